package router

import (
	"somnus_tickets/handler"
	"somnus_tickets/middleware"
	"somnus_tickets/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	// Admin auth
	auth := v1.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/refresh-token", handler.RefreshToken)
	auth.Get("/me", middleware.Protected(), handler.Me)

	// Admin: events and ticket types
	event := v1.Group("/event", logger.New())
	event.Get("/", middleware.Protected(), middleware.RequireAdmin(), handler.GetEventsAdmin)
	event.Post("/", middleware.Protected(), middleware.RequireAdmin(), validate.CreateEvent(), handler.CreateEvent)
	event.Put("/:eventId", middleware.Protected(), middleware.RequireAdmin(), validate.EditEvent("eventId"), handler.EditEvent)
	event.Patch("/:eventId/activate", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("eventId"), handler.ActivateEvent)
	event.Patch("/:eventId/deactivate", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("eventId"), handler.DeactivateEvent)
	event.Delete("/:eventId", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("eventId"), handler.DeleteEvent)
	event.Get("/:eventId/ticket-types", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("eventId"), handler.GetTicketTypesByEvent)
	event.Post("/:eventId/ticket-types", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("eventId"), validate.CreateTicketType(), handler.CreateTicketType)
	event.Get("/:eventId/stats", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("eventId"), handler.GetEventStats)

	ticketType := v1.Group("/ticket-type", logger.New())
	ticketType.Put("/:ticketTypeId", middleware.Protected(), middleware.RequireAdmin(), validate.EditTicketType("ticketTypeId"), handler.EditTicketType)
	ticketType.Delete("/:ticketTypeId", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("ticketTypeId"), handler.DeleteTicketType)

	// Admin: sales, tickets, check-in
	sale := v1.Group("/sale", logger.New())
	sale.Get("/", middleware.Protected(), middleware.RequireAdmin(), handler.GetSalesAdmin)
	sale.Post("/:saleCode/settle-cash", middleware.Protected(), middleware.RequireAdmin(), handler.SettleCashSale)

	ticket := v1.Group("/ticket", logger.New())
	ticket.Get("/", middleware.Protected(), middleware.RequireAdmin(), handler.GetTicketsAdmin)
	ticket.Post("/scan", middleware.Protected(), middleware.RequireAdmin(), validate.ScanTicket(), handler.ScanTicket)
	ticket.Post("/scan-sale/:saleCode", middleware.Protected(), middleware.RequireAdmin(), handler.ScanSale)

	statistic := v1.Group("/statistic", logger.New())
	statistic.Get("/", middleware.Protected(), middleware.RequireAdmin(), handler.GetAdminStats)

	// Admin: gallery
	v1.Post("/cloudinary-signature", middleware.Protected(), middleware.RequireAdmin(), handler.GenerateSignature)
	gallery := v1.Group("/gallery", logger.New())
	gallery.Get("/", handler.GetGallery)
	gallery.Post("/", middleware.Protected(), middleware.RequireAdmin(), handler.UploadGalleryImages)
	gallery.Put("/:imageId", middleware.Protected(), middleware.RequireAdmin(), validate.GetById("imageId"), handler.UpdateGalleryImage)
	gallery.Delete("/", middleware.Protected(), middleware.RequireAdmin(), handler.DeleteGalleryImages)

	// Public storefront
	evento := v1.Group("/evento")
	evento.Get("/", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetActiveEvent)
	evento.Get("/proximos", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetUpcomingEvents)
	evento.Get("/:slug", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetEventBySlug)
	evento.Get("/:slug/availability", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetAvailability)

	checkout := v1.Group("/checkout")
	checkout.Post("/", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.Checkout(), handler.Checkout)

	compra := v1.Group("/compra")
	compra.Get("/", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetMySales)
	compra.Get("/:saleCode", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetSaleDetail)
	compra.Get("/:saleCode/invites", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetSaleInvites)
	compra.Post("/invites", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.CreateInvite(), handler.CreateInvite)

	invite := v1.Group("/invite")
	invite.Get("/:token", handler.GetInvite)
	invite.Post("/:token/pay", handler.CreateInvitePayment)

	// Customer accounts
	cliente := v1.Group("/cliente")
	cliente.Post("/register", validate.RegisterCustomer(), handler.RegisterCustomer)
	cliente.Post("/login", handler.CustomerLogin)
	cliente.Post("/refresh-token", handler.RefreshToken)
	cliente.Get("/me", middleware.OptionalJWT(), middleware.OptionalAuth(), handler.GetCurrentCustomer)
	cliente.Post("/change-password", middleware.OptionalJWT(), middleware.OptionalAuth(), validate.ChangePasswordCustomer(), handler.ChangePasswordCustomer)
	cliente.Post("/forgot-password", validate.ForgotPassword(), handler.ForgotPassword)
	cliente.Post("/reset-password", validate.ResetPassword(), handler.ResetPassword)

	// Live availability
	v1.Get("/availability/:id", websocket.New(handler.AvailabilitySocket))

	// Gateway, server-to-server
	app.Post("/payments", validate.CreatePayment(), handler.CreatePayment)
	app.Get("/paygate/return", handler.PayGateReturn)
	app.Post("/paygate/ipn", handler.PayGateIPN)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
