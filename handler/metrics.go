package handler

import "somnus_tickets/monitoring"

func RecordSaleCompleted(eventID uint, amount float64) { monitoring.SaleCompleted(eventID, amount) }
func RecordSoldOutRejection(eventID uint)              { monitoring.SoldOutRejection(eventID) }
func RecordWebhookReplay()                             { monitoring.WebhookReplay() }
func RecordTicketScan(eventID uint)                    { monitoring.TicketScan(eventID) }
