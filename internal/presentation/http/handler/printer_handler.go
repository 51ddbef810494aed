package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/application/service"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// PrintBill prints a bill's receipt.
func (h *PrinterHandler) PrintBill(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintBill(c.Request.Context(), id)
	if err != nil {
		// The receipt is still useful when printing is disabled or the printer is down
		if errors.Is(err, service.ErrPrintFailed) && receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill receipt printed successfully", gin.H{
		"receipt": receipt,
	})
}
