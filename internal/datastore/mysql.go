package datastore

import (
	"fmt"

	"github.com/qchem/gausscat/internal/conf"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func mysqlDialector(s *conf.MySQLSettings) (gorm.Dialector, string) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		s.Username, s.Password, s.Host, s.Port, s.Database)
	target := fmt.Sprintf("%s@%s:%d/%s", s.Username, s.Host, s.Port, s.Database)

	return mysql.New(mysql.Config{
		DSN:                       dsn,
		DefaultStringSize:         256,
		SkipInitializeWithVersion: false,
	}), target
}
