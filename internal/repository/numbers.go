package repository

import "gorm.io/gorm"

// latestNumber returns the highest document number in column that belongs to
// scope, or "" when there is none. Longer numbers sort first so that a
// sequence past 9999 still wins over the zero padded ones. Soft deleted rows
// count because they keep their unique index entry.
func latestNumber(db *gorm.DB, table interface{}, column, scope string) (string, error) {
	var numbers []string
	err := db.Unscoped().Model(table).
		Where(column+" LIKE ?", scope+"-%").
		Order("LENGTH(" + column + ") DESC, " + column + " DESC").
		Limit(1).
		Pluck(column, &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}
