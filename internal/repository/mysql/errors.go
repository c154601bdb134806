package mysql

import (
	"errors"

	"storefront/internal/repository"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const erDupEntry = 1062

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicateKey
	}
	var me *mysqldriver.MySQLError
	if errors.As(err, &me) && me.Number == erDupEntry {
		return repository.ErrDuplicateKey
	}
	return err
}
