package main

import (
	"context"
	"log/slog"
	"os"

	"storebot/config"
	"storebot/internal/delivery"
	httpdelivery "storebot/internal/delivery/http"
	tgdelivery "storebot/internal/delivery/telegram"
	"storebot/internal/domain/service"
	logs "storebot/internal/infra/log"
	"storebot/internal/infra/persistence"
	"storebot/internal/infra/telegram"
	"storebot/internal/render"
	"storebot/internal/usecase"
	"storebot/internal/usecase/impl"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		injectDelivery(),
		fx.Invoke(
			seedCatalog,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		render.New,
		telegram.NewBotAPI,
		func(bot *tgbotapi.BotAPI) service.Messenger {
			return telegram.NewMessenger(bot)
		},
		func(bot *tgbotapi.BotAPI) tgdelivery.UpdateSource {
			return bot
		},
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newStores,
			(*stores).catalogRepo,
			(*stores).orderRepo,
			(*stores).sessionRepo,
			(*stores).basketRepo,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCatalogService,
			impl.NewBasketService,
			newOrderService,
			impl.NewCheckoutService,
			impl.NewAdminService,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			httpdelivery.NewHealthHandler,
			fx.Annotate(
				httpdelivery.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				newBot,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func newBot(params tgdelivery.BotParams) delivery.Delivery {
	return tgdelivery.NewOrderBot(params)
}

type orderServiceParams struct {
	fx.In
	fx.Lifecycle

	Stores    *stores
	Messenger service.Messenger
	Render    *render.Renderer
	Config    *config.Config
	Logger    *slog.Logger
}

// newOrderService drains pending customer notifications on shutdown. It is
// built before the bot, so its stop hook runs after the update loop stops.
func newOrderService(params orderServiceParams) usecase.OrderUsecase {
	srv := impl.NewOrderService(params.Stores.orders, params.Messenger, params.Render, params.Config, params.Logger)

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			srv.Wait()

			return nil
		},
	})

	return srv
}

func seedCatalog(lc fx.Lifecycle, s *stores, catalog usecase.CatalogUsecase, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := persistence.Seed(ctx, s.catalog, logger); err != nil {
				return err
			}

			return catalog.Reload(ctx)
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						slog.Error("Failed to start server", slog.Any("error", err))

						// Trigger graceful shutdown to execute all OnStop hooks
						if shutdownErr := params.Shutdown(); shutdownErr != nil {
							slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
							os.Exit(1)
						}
					}
				}()
			}

			return nil
		},
	})
}
