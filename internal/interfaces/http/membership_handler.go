package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Proyectos-api/internal/application/access"
	"github.com/jhoicas/Proyectos-api/internal/application/dto"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/domain"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

// MembershipHandler miembros de un proyecto y sincronización legacy.
type MembershipHandler struct {
	uc     *membership.MembershipUseCase
	legacy *membership.LegacyAdapter
	gate   *access.Gate
}

// NewMembershipHandler construye el handler de membresías.
func NewMembershipHandler(uc *membership.MembershipUseCase, legacy *membership.LegacyAdapter, gate *access.Gate) *MembershipHandler {
	return &MembershipHandler{uc: uc, legacy: legacy, gate: gate}
}

// List godoc
// @Summary      Listar miembros activos
// @Tags         members
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {array}   dto.MembershipResponse
// @Router       /api/projects/{id}/members [get]
func (h *MembershipHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListActiveMembers(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MembershipResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMembershipResponse(m))
	}
	return c.JSON(out)
}

// Add godoc
// @Summary      Agregar miembro
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string                true  "ID del proyecto"
// @Param        body  body      dto.AddMemberRequest  true  "Miembro"
// @Success      201   {object}  dto.MembershipResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/members [post]
func (h *MembershipHandler) Add(c *fiber.Ctx) error {
	var in dto.AddMemberRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	role, ok := entity.ParseProjectRole(in.Role)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rol desconocido"})
	}
	projectID := c.Params("id")
	if err := h.requireManager(c, projectID, role); err != nil {
		return writeError(c, err)
	}
	m, err := h.uc.Add(c.UserContext(), projectID, in.UserID, role)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMembershipResponse(m))
}

// Deactivate godoc
// @Summary      Dar de baja un miembro
// @Tags         members
// @Produce      json
// @Security     Bearer
// @Param        id      path  string  true  "ID del proyecto"
// @Param        userId  path  string  true  "ID del usuario"
// @Param        role    path  string  true  "Rol"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/members/{userId}/{role} [delete]
func (h *MembershipHandler) Deactivate(c *fiber.Ctx) error {
	role, ok := entity.ParseProjectRole(c.Params("role"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rol desconocido"})
	}
	projectID := c.Params("id")
	if err := h.requireManager(c, projectID, role); err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Deactivate(c.UserContext(), projectID, c.Params("userId"), role); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "membresía desactivada"})
}

// Role godoc
// @Summary      Rol efectivo en el proyecto
// @Description  Sin user_id devuelve el rol del usuario del token.
// @Tags         members
// @Produce      json
// @Security     Bearer
// @Param        id       path   string  true   "ID del proyecto"
// @Param        user_id  query  string  false  "ID del usuario"
// @Success      200  {object}  dto.RoleResponse
// @Router       /api/projects/{id}/role [get]
func (h *MembershipHandler) Role(c *fiber.Ctx) error {
	projectID := c.Params("id")
	userID := c.Query("user_id", GetUserID(c))
	role, err := h.uc.ResolveRole(c.UserContext(), projectID, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RoleResponse{ProjectID: projectID, UserID: userID, Role: string(role)})
}

// SyncLegacy godoc
// @Summary      Recalcular columnas legacy desde las membresías
// @Tags         members
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {object}  dto.SyncResponse
// @Router       /api/projects/{id}/legacy/sync [post]
func (h *MembershipHandler) SyncLegacy(c *fiber.Ctx) error {
	res, err := h.legacy.SyncLegacyFromMembership(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSyncResponse(res))
}

// Backfill godoc
// @Summary      Completar membresías desde columnas legacy
// @Tags         members
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {object}  dto.SyncResponse
// @Router       /api/projects/{id}/legacy/backfill [post]
func (h *MembershipHandler) Backfill(c *fiber.Ctx) error {
	res, err := h.legacy.SyncMembershipFromLegacy(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSyncResponse(res))
}

// requireManager exige invitar_miembros y que el rol gestionado no supere al del actor.
func (h *MembershipHandler) requireManager(c *fiber.Ctx, projectID string, role entity.ProjectRole) error {
	have, err := h.gate.RequireCapability(c.UserContext(), GetUserID(c), projectID, entity.CapInviteMembers)
	if err != nil {
		return err
	}
	if role.Privilege() > have.Privilege() {
		return domain.ErrForbidden
	}
	return nil
}

func toSyncResponse(res *membership.SyncResult) dto.SyncResponse {
	out := dto.SyncResponse{ProjectID: res.ProjectID, Changed: res.Changed, Created: len(res.Created)}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}
