package middleware

import "github.com/gofiber/fiber/v2"

type Middleware interface {
	Middleware() fiber.Handler
}

// Transport lists the middlewares installed in front of every non-system route, in order.
type Transport struct {
	PanicRecoverMiddleware Middleware
	MetricsMiddleware      Middleware
	XSSGuardMiddleware     Middleware
}

func (t *Transport) GetMiddlewares() []interface{} {
	var handlers []interface{}
	for _, m := range []Middleware{
		t.PanicRecoverMiddleware,
		t.MetricsMiddleware,
		t.XSSGuardMiddleware,
	} {
		if m != nil {
			handlers = append(handlers, m.Middleware())
		}
	}
	return handlers
}
