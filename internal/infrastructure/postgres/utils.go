package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tu-usuario/pos-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isConcurrencyConflict verifica los códigos que señalan un conflicto
// transitorio de concurrencia: falla de serialización (40001), deadlock
// (40P01) y timeout de lock (55P03). La operación completa es reintentable.
func isConcurrencyConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// translateErr mapea los conflictos de concurrencia a domain.ErrConcurrencyConflict
// conservando el error original en la cadena.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if isConcurrencyConflict(err) {
		return errors.Join(domain.ErrConcurrencyConflict, err)
	}
	return err
}
