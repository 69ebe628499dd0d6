package components

import (
	"bakery-flashsale/internal/handler"
	"bakery-flashsale/internal/handler/api"
	"bakery-flashsale/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSaleHandler,
		api.NewReservationHandler,
		middleware.NewAuthMiddleware,
		func(sale *api.SaleHandler, reservation *api.ReservationHandler) handler.Handlers {
			return handler.Handlers{Sale: sale, Reservation: reservation}
		},
	),
	fx.Invoke(handler.NewRouter),
)
