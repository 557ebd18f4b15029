package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Proyectos-api/internal/application/deliverable"
	"github.com/jhoicas/Proyectos-api/internal/application/dto"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// DeliverableHandler entregables y su flujo de revisión.
type DeliverableHandler struct {
	uc *deliverable.DeliverableUseCase
}

// NewDeliverableHandler construye el handler de entregables.
func NewDeliverableHandler(uc *deliverable.DeliverableUseCase) *DeliverableHandler {
	return &DeliverableHandler{uc: uc}
}

// Create godoc
// @Summary      Crear entregable
// @Tags         deliverables
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string                        true  "ID del proyecto"
// @Param        body  body      dto.CreateDeliverableRequest  true  "Entregable"
// @Success      201   {object}  dto.DeliverableResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/deliverables [post]
func (h *DeliverableHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDeliverableRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	d, err := h.uc.Create(c.UserContext(), c.Params("id"), GetUserID(c), deliverable.CreateInput{
		PhaseID:      in.PhaseID,
		Title:        in.Title,
		AssigneeID:   in.AssigneeID,
		DueDate:      in.DueDate,
		Observations: in.Observations,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDeliverableResponse(d, overdueNow(d)))
}

// List godoc
// @Summary      Listar entregables del proyecto
// @Tags         deliverables
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {array}   dto.DeliverableResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/deliverables [get]
func (h *DeliverableHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.DeliverableResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toViewResponse(v))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener entregable
// @Tags         deliverables
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del entregable"
// @Success      200  {object}  dto.DeliverableResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliverables/{id} [get]
func (h *DeliverableHandler) GetByID(c *fiber.Ctx) error {
	v, err := h.uc.Get(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toViewResponse(*v))
}

// Transition godoc
// @Summary      Cambiar estado del entregable
// @Tags         deliverables
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string                 true  "ID del entregable"
// @Param        body  body      dto.TransitionRequest  true  "Estado destino"
// @Success      200   {object}  dto.DeliverableResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/deliverables/{id}/transition [post]
func (h *DeliverableHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	d, err := h.uc.Transition(c.UserContext(), c.Params("id"), GetUserID(c), entity.WorkflowState(in.Target))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDeliverableResponse(d, overdueNow(d)))
}

// Comment godoc
// @Summary      Comentar entregable
// @Tags         deliverables
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string              true  "ID del entregable"
// @Param        body  body      dto.CommentRequest  true  "Comentario"
// @Success      201   {object}  dto.CommentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/deliverables/{id}/comments [post]
func (h *DeliverableHandler) Comment(c *fiber.Ctx) error {
	var in dto.CommentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	cm, err := h.uc.AddComment(c.UserContext(), c.Params("id"), GetUserID(c), in.Text, in.AttachmentRef)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCommentResponse(cm))
}

// History godoc
// @Summary      Historial del entregable
// @Tags         deliverables
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del entregable"
// @Success      200  {object}  dto.HistoryResponse
// @Router       /api/deliverables/{id}/history [get]
func (h *DeliverableHandler) History(c *fiber.Ctx) error {
	hist, err := h.uc.History(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toHistoryResponse(hist))
}
