package router

import (
	"github.com/erp/taxinvoice/internal/interfaces/http/handler"
)

// TaxInvoiceRoutes groups the tax invoice and edit session endpoints
func TaxInvoiceRoutes(taxInvoices *handler.TaxInvoiceHandler, sessions *handler.SessionHandler) *DomainGroup {
	g := NewDomainGroup("tax-invoices", "/tax-invoices")
	g.POST("", taxInvoices.Create)
	g.GET("", taxInvoices.List)
	g.GET("/:id", taxInvoices.GetByID)

	s := g.Group("tax-invoice-sessions", "/:id/session")
	s.POST("", sessions.Open)
	s.GET("", sessions.Get)
	s.DELETE("", sessions.Cancel)
	s.PATCH("/fields", sessions.EditField)
	s.POST("/fields/:field/reset", sessions.ResetField)
	s.POST("/fields/:field/recalculate", sessions.RecalculateField)
	s.POST("/reset", sessions.ResetAll)
	s.POST("/submit", sessions.Submit)

	return g
}

// SystemRoutes groups the system information endpoints
func SystemRoutes(system *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", system.GetSystemInfo)
	g.GET("/ping", system.Ping)
	return g
}
