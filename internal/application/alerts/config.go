package alerts

import "time"

// Config parámetros de cálculo del motor de alertas. Todos son configuración
// externa (ver pkg/config): la ventana de ventas y los desempates de prioridad
// no son constantes del dominio.
type Config struct {
	// WindowDays ventana móvil (en días) para calcular velocidad de ventas.
	WindowDays int
	// StaleAfter antigüedad máxima de un snapshot de inventario antes de
	// marcarlo STALE_DATA. El dato viejo degrada confianza pero no se descarta.
	StaleAfter time.Duration
	// MaxWorkers máximo de productos evaluados en paralelo por lote.
	MaxWorkers int
	// LeafTimeout timeout de cada lectura individual a la capa de datos.
	LeafTimeout time.Duration
	// RetryBackoff espera antes del único reintento de una lectura vencida.
	RetryBackoff time.Duration
}

// withDefaults completa los campos en cero con valores operativos razonables.
func (c Config) withDefaults() Config {
	if c.WindowDays <= 0 {
		c.WindowDays = 30
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 24 * time.Hour
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 8
	}
	if c.LeafTimeout <= 0 {
		c.LeafTimeout = 3 * time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	return c
}
