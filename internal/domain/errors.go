package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrCompanyNotFound    = errors.New("empresa no encontrada")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrNoThreshold: el producto no tiene umbral propio ni la empresa tiene
	// umbral por defecto. Nunca se degrada a umbral cero: un cero silencioso
	// suprimiría alertas legítimas.
	ErrNoThreshold = errors.New("umbral de reorden no resoluble")

	// ErrDataIntegrity: datos corruptos upstream (stock negativo, ciclo en la
	// composición de un bundle). Se reporta por producto, nunca aborta el lote.
	ErrDataIntegrity = errors.New("violación de integridad de datos")

	// ErrUpstreamTimeout: una lectura a la capa de datos excedió su timeout
	// (tras un único reintento con backoff).
	ErrUpstreamTimeout = errors.New("timeout leyendo datos upstream")
)
