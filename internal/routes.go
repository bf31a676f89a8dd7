package internal

import (
	"net/http"
	"statusdash/internal/controllers"
	"statusdash/internal/providers"
	"statusdash/internal/services"
)

func InitRoutes(apiController *controllers.ApiController, configController *controllers.ConfigController, widgets services.WidgetServiceInterface) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/config", http.HandlerFunc(configController.GetConfig))
	routers.Put("/api/config", http.HandlerFunc(configController.UpdateConfig))
	routers.Post("/api/config", http.HandlerFunc(configController.UpdateConfig))

	routers.Post("/api/storm-mode/trigger", http.HandlerFunc(configController.TriggerStorm))
	routers.Get("/api/storm_mode", http.HandlerFunc(configController.GetStormMode))
	routers.Post("/api/storm_mode", http.HandlerFunc(configController.UpdateStormMode))

	for _, name := range widgets.Widgets() {
		routers.Get("/api/"+name, apiController.Widget(name))
	}

	routers.Get("/api/cache/{key}", http.HandlerFunc(apiController.GetEntry))
	routers.Post("/api/cache/{key}", http.HandlerFunc(apiController.IngestEntry))
	return routers
}
