package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Proyectos-api/internal/application/dto"
	"github.com/jhoicas/Proyectos-api/internal/application/invitation"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// InvitationHandler emisión, canje y revocación de invitaciones.
type InvitationHandler struct {
	uc *invitation.InvitationUseCase
}

// NewInvitationHandler construye el handler de invitaciones.
func NewInvitationHandler(uc *invitation.InvitationUseCase) *InvitationHandler {
	return &InvitationHandler{uc: uc}
}

// Create godoc
// @Summary      Emitir invitación
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string                       true  "ID del proyecto"
// @Param        body  body      dto.CreateInvitationRequest  true  "Rol, usos y expiración"
// @Success      201   {object}  dto.InvitationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/invitations [post]
func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvitationRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	role, ok := entity.ParseProjectRole(in.Role)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rol desconocido"})
	}
	inv, err := h.uc.Create(c.UserContext(), c.Params("id"), role, GetUserID(c), in.MaxUses, in.ExpiresAt)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInvitationResponse(inv))
}

// List godoc
// @Summary      Listar invitaciones del proyecto
// @Tags         invitations
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {array}   dto.InvitationResponse
// @Router       /api/projects/{id}/invitations [get]
func (h *InvitationHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListByProject(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.InvitationResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvitationResponse(inv))
	}
	return c.JSON(out)
}

// Accept godoc
// @Summary      Aceptar invitación
// @Tags         invitations
// @Produce      json
// @Security     Bearer
// @Param        code  path      string  true  "Código"
// @Success      201   {object}  dto.MembershipResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /api/invitations/{code}/accept [post]
func (h *InvitationHandler) Accept(c *fiber.Ctx) error {
	m, err := h.uc.Accept(c.UserContext(), c.Params("code"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMembershipResponse(m))
}

// Revoke godoc
// @Summary      Revocar invitación
// @Tags         invitations
// @Produce      json
// @Security     Bearer
// @Param        code  path      string  true  "Código"
// @Success      200   {object}  dto.MessageResponse
// @Router       /api/invitations/{code} [delete]
func (h *InvitationHandler) Revoke(c *fiber.Ctx) error {
	if err := h.uc.Revoke(c.UserContext(), c.Params("code"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "invitación revocada"})
}
