package routers

import (
	"careplan-service/internal/app/delivery/http/controllers"
	"careplan-service/internal/pkg/constvars"
	"fmt"

	"github.com/go-chi/chi/v5"
)

func attachCarePlanRoutes(router chi.Router, carePlanController *controllers.CarePlanController) {
	router.Post("/", carePlanController.Submit)
	router.Get("/export", carePlanController.ExportCSV)
	router.Get("/stats", carePlanController.GetStats)
	router.Get(fmt.Sprintf("/{%s}/status", constvars.URLParamCarePlanID), carePlanController.GetStatus)
	router.Get(fmt.Sprintf("/{%s}/download", constvars.URLParamCarePlanID), carePlanController.Download)
}
