package components

import (
	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/usecase"
	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewExpiryCommands,
		commands.NewReservationCommands,
		commands.NewSaleCommands,
		commands.NewOutboxCommands,
		// stock reads release due holds through the expiry commands
		func(expiry commands.ExpiryCommands) queries.ItemSweeper { return expiry },
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewSaleQueries,
		queries.NewStockQueries,
		queries.NewReservationQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
