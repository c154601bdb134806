package mysql

import (
	"fmt"
	"log"
	"net"

	"storefront/internal/config"
	"storefront/internal/domain"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DSN builds the driver connection string. ClientFoundRows makes UPDATE report
// matched rows, so writing an unchanged value is not mistaken for a missing row.
func DSN(cfg config.MySQL) string {
	dc := mysqldriver.NewConfig()
	dc.User = cfg.User
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	dc.DBName = cfg.Database
	dc.ParseTime = true
	dc.ClientFoundRows = true
	dc.Timeout = cfg.DialTimeout
	dc.ReadTimeout = cfg.ReadTimeout
	dc.WriteTimeout = cfg.WriteTimeout
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

func NewMySQL(cfg config.MySQL) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		TranslateError: true,
		// Only order_items.order_id gets a constraint, see Migrate.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("MySQL pool ready (%s, max open conns %d)", cfg.Database, cfg.MaxOpenConns)
	return db, nil
}

// Migrate creates the schema. The only foreign key is order_items.order_id;
// products.category_id and order_items.product_id stay unconstrained.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Category{},
		&domain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.User{},
	); err != nil {
		return err
	}

	m := db.Migrator()
	if !m.HasConstraint(&domain.Order{}, "Items") {
		if err := m.CreateConstraint(&domain.Order{}, "Items"); err != nil {
			return fmt.Errorf("create order_items.order_id constraint: %w", err)
		}
	}
	return nil
}
