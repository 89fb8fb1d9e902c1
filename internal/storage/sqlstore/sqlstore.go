// Package sqlstore persists sales in a base table plus one satellite table per channel.
//
//	Venta(dni PK, fecha, cliente, producto_vendido)
//	VentaOnline(dni FK, fecha, cliente, producto_vendido, envio_gratis)
//	VentaLocal(dni FK, fecha, cliente, producto_vendido, descuento_efectivo)
//
// A sale's channel is found by probing VentaOnline, then VentaLocal. Every
// operation takes its own connection from the pool and releases it before
// returning, on error paths too.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"phone_sales/internal/config"
	"phone_sales/internal/sales"
)

const backendName = "sql"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS Venta (
		dni INTEGER PRIMARY KEY,
		fecha TEXT NOT NULL,
		cliente TEXT NOT NULL,
		producto_vendido INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS VentaOnline (
		dni INTEGER PRIMARY KEY REFERENCES Venta(dni),
		fecha TEXT NOT NULL,
		cliente TEXT NOT NULL,
		producto_vendido INTEGER NOT NULL,
		envio_gratis BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS VentaLocal (
		dni INTEGER PRIMARY KEY REFERENCES Venta(dni),
		fecha TEXT NOT NULL,
		cliente TEXT NOT NULL,
		producto_vendido INTEGER NOT NULL,
		descuento_efectivo NUMERIC(10,2)
	)`,
}

func satelliteFor(ch sales.Channel) string {
	if ch == sales.ChannelOnline {
		return "VentaOnline"
	}
	return "VentaLocal"
}

// Store is a sales.Storage on database/sql.
type Store struct {
	db       *sql.DB
	postgres bool
}

// Open connects with the configured driver (postgres, pgx or sqlite3) and creates the tables.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	db, err := sql.Open(cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, sales.NewStorageError(backendName, "open", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, sales.NewStorageError(backendName, "ping", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s, err := New(db, cfg.Driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and creates the tables if they do not exist.
func New(db *sql.DB, driver string) (*Store, error) {
	s := &Store{db: db, postgres: driver == "postgres" || driver == "pgx"}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the pool for health checks and pool metrics.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	return s.withTx(ctx, "migrate", func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx acquires a dedicated connection, runs fn in a transaction and
// releases the connection whatever happens.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return sales.NewStorageError(backendName, op, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return sales.NewStorageError(backendName, op, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return sales.NewStorageError(backendName, op, err)
	}
	if err = tx.Commit(); err != nil {
		return sales.NewStorageError(backendName, op, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres drivers.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exists(ctx context.Context, tx *sql.Tx, dni int) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM Venta WHERE dni = ?`), dni).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Create(ctx context.Context, sale sales.Sale) error {
	return s.withTx(ctx, "create", func(tx *sql.Tx) error {
		found, err := s.exists(ctx, tx, sale.DNI)
		if err != nil {
			return err
		}
		if found {
			return sales.Duplicate(sale.DNI)
		}

		fecha := sale.Date.Format(sales.DateLayout)
		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO Venta (dni, fecha, cliente, producto_vendido) VALUES (?, ?, ?, ?)`),
			sale.DNI, fecha, sale.Customer, sale.Quantity,
		)
		if err != nil {
			return err
		}

		var derived any
		column := sales.KeyFreeShipping
		if sale.Channel == sales.ChannelOnline {
			derived = sale.FreeShipping
		} else {
			column = sales.KeyCashDiscount
			derived = sale.CashDiscount
		}

		query := fmt.Sprintf(`INSERT INTO %s (dni, fecha, cliente, producto_vendido, %s) VALUES (?, ?, ?, ?, ?)`,
			satelliteFor(sale.Channel), column)
		_, err = tx.ExecContext(ctx, s.rebind(query), sale.DNI, fecha, sale.Customer, sale.Quantity, derived)
		return err
	})
}

func (s *Store) Read(ctx context.Context, dni int) (sales.Sale, error) {
	var sale sales.Sale
	err := s.withTx(ctx, "read", func(tx *sql.Tx) error {
		var (
			id       int64
			fecha    string
			cliente  string
			cantidad int64
		)
		err := tx.QueryRowContext(ctx,
			s.rebind(`SELECT dni, fecha, cliente, producto_vendido FROM Venta WHERE dni = ?`), dni,
		).Scan(&id, &fecha, &cliente, &cantidad)
		if errors.Is(err, sql.ErrNoRows) {
			return sales.NotFound(dni)
		}
		if err != nil {
			return err
		}

		rec := sales.Record{
			sales.KeyDNI:      id,
			sales.KeyDate:     fecha,
			sales.KeyCustomer: cliente,
			sales.KeyQuantity: cantidad,
		}

		ch, derived, err := s.probe(ctx, tx, dni)
		if err != nil {
			return err
		}
		if ch == "" {
			return fmt.Errorf("%w: dni %d has no VentaOnline or VentaLocal row", sales.ErrUnknownVariant, dni)
		}
		if derived == nil {
			// columna derivada en NULL: se recalcula desde la cantidad
			sale, err = sales.DecodeAs(rec, ch)
			return err
		}

		if ch == sales.ChannelOnline {
			rec[sales.KeyFreeShipping] = derived
		} else {
			rec[sales.KeyCashDiscount] = derived
		}
		sale, err = sales.Decode(rec)
		return err
	})
	return sale, err
}

// probe looks for the sale in VentaOnline, then VentaLocal, and returns the
// channel found with its derived value (nil when the column is NULL).
func (s *Store) probe(ctx context.Context, tx *sql.Tx, dni int) (sales.Channel, any, error) {
	var free sql.NullBool
	err := tx.QueryRowContext(ctx, s.rebind(`SELECT envio_gratis FROM VentaOnline WHERE dni = ?`), dni).Scan(&free)
	switch {
	case err == nil:
		if !free.Valid {
			return sales.ChannelOnline, nil, nil
		}
		return sales.ChannelOnline, free.Bool, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", nil, err
	}

	var discount decimal.NullDecimal
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT descuento_efectivo FROM VentaLocal WHERE dni = ?`), dni).Scan(&discount)
	switch {
	case err == nil:
		if !discount.Valid {
			return sales.ChannelLocal, nil, nil
		}
		return sales.ChannelLocal, discount.Decimal, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", nil, err
	}
	return "", nil, nil
}

func (s *Store) Update(ctx context.Context, dni int, patch sales.Patch) error {
	return s.withTx(ctx, "update", func(tx *sql.Tx) error {
		found, err := s.exists(ctx, tx, dni)
		if err != nil {
			return err
		}
		if !found {
			return sales.NotFound(dni)
		}

		ch, _, err := s.probe(ctx, tx, dni)
		if err != nil {
			return err
		}
		if ch == "" {
			return fmt.Errorf("%w: dni %d has no VentaOnline or VentaLocal row", sales.ErrUnknownVariant, dni)
		}
		if err := patch.CheckChannel(ch); err != nil {
			return err
		}

		column := patch.Field.Key()
		if _, derived := patch.Field.Derived(); derived {
			query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE dni = ?`, satelliteFor(ch), column)
			_, err := tx.ExecContext(ctx, s.rebind(query), patch.Value, dni)
			return err
		}

		// base columns are copied into the satellite rows, keep them in step
		for _, table := range []string{"Venta", "VentaOnline", "VentaLocal"} {
			query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE dni = ?`, table, column)
			if _, err := tx.ExecContext(ctx, s.rebind(query), patch.Value, dni); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, dni int) error {
	return s.withTx(ctx, "delete", func(tx *sql.Tx) error {
		found, err := s.exists(ctx, tx, dni)
		if err != nil {
			return err
		}
		if !found {
			return sales.NotFound(dni)
		}

		for _, table := range []string{"VentaOnline", "VentaLocal", "Venta"} {
			query := fmt.Sprintf(`DELETE FROM %s WHERE dni = ?`, table)
			if _, err := tx.ExecContext(ctx, s.rebind(query), dni); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) List(ctx context.Context) ([]sales.Summary, error) {
	out := []sales.Summary{}
	err := s.withTx(ctx, "list", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT dni, fecha, cliente, producto_vendido FROM Venta ORDER BY dni`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var sum sales.Summary
			if err := rows.Scan(&sum.DNI, &sum.Date, &sum.Customer, &sum.Quantity); err != nil {
				return err
			}
			out = append(out, sum)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
