package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", handler.RateLimited)

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Post("/change-password", handler.ChangePassword)

	cycle := api.Group("/cycle", handler.AuthRequired)
	cycle.Get("/settings", handler.GetCycleSettings)
	cycle.Put("/settings", handler.UpdateCycleSettings)
	cycle.Get("/snapshot", handler.GetCycleSnapshot)
	cycle.Get("/logs", handler.ListCycleLogs)
	cycle.Put("/logs/:date", handler.SaveCycleLog)
	cycle.Delete("/logs/:date", handler.DeleteCycleLog)

	api.Get("/profile", handler.AuthRequired, handler.GetProfile)
	api.Put("/profile", handler.AuthRequired, handler.UpdateProfile)
	api.Get("/pregnancy", handler.AuthRequired, handler.GetPregnancy)

	contacts := api.Group("/contacts", handler.AuthRequired)
	contacts.Get("", handler.ListContacts)
	contacts.Post("", handler.CreateContact)
	contacts.Put("/:id", handler.UpdateContact)
	contacts.Delete("/:id", handler.DeleteContact)

	professionals := api.Group("/professionals", handler.AuthRequired)
	professionals.Get("", handler.ListProfessionals)
	professionals.Get("/specializations", handler.ProfessionalSpecializations)
	professionals.Post("", handler.CreateProfessional)
	professionals.Put("/:id", handler.UpdateProfessional)
	professionals.Delete("/:id", handler.DeleteProfessional)

	alerts := api.Group("/alerts", handler.AuthRequired)
	alerts.Get("", handler.ListAlerts)
	alerts.Post("", handler.CreateAlert)
	alerts.Post("/emergency", handler.TriggerEmergency)
	alerts.Post("/:id/acknowledge", handler.AcknowledgeAlert)
	alerts.Post("/:id/resolve", handler.ResolveAlert)

	chat := api.Group("/chat", handler.AuthRequired)
	chat.Post("", handler.Chat)
	chat.Get("/history", handler.ChatHistory)

	contentGroup := api.Group("/content")
	contentGroup.Get("/guidelines", handler.Guidelines)
	contentGroup.Get("/tips/:week", handler.WeeklyTips)
	contentGroup.Get("/symptoms", handler.SymptomOptions)

	api.Get("/facilities/nearby", handler.NearbyFacilities)
}
