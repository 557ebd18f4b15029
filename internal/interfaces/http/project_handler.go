package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Proyectos-api/internal/application/deliverable"
	"github.com/jhoicas/Proyectos-api/internal/application/dto"
	"github.com/jhoicas/Proyectos-api/internal/application/project"
)

// ProjectHandler proyectos, fases, avance, informe y cierre.
type ProjectHandler struct {
	uc           *project.ProjectUseCase
	deliverables *deliverable.DeliverableUseCase
}

// NewProjectHandler construye el handler de proyectos.
func NewProjectHandler(uc *project.ProjectUseCase, deliverables *deliverable.DeliverableUseCase) *ProjectHandler {
	return &ProjectHandler{uc: uc, deliverables: deliverables}
}

// Create godoc
// @Summary      Crear proyecto
// @Description  El creador queda como miembro con su rol de sistema; estudiante y director opcionales.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body      dto.CreateProjectRequest  true  "Proyecto"
// @Success      201   {object}  dto.ProjectResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	p, err := h.uc.Create(c.UserContext(), GetUserID(c), project.CreateInput{
		Title:      in.Title,
		WorkAreaID: in.WorkAreaID,
		StudentID:  in.StudentID,
		DirectorID: in.DirectorID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProjectResponse(p))
}

// GetByID godoc
// @Summary      Obtener proyecto
// @Tags         projects
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProjectResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "proyecto no encontrado"})
	}
	return c.JSON(toProjectResponse(p))
}

// AddPhase godoc
// @Summary      Agregar fase
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string                  true  "ID del proyecto"
// @Param        body  body      dto.CreatePhaseRequest  true  "Fase"
// @Success      201   {object}  dto.PhaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/phases [post]
func (h *ProjectHandler) AddPhase(c *fiber.Ctx) error {
	var in dto.CreatePhaseRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	ph, err := h.uc.AddPhase(c.UserContext(), c.Params("id"), GetUserID(c), in.Name, in.Order, in.Weight)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PhaseResponse{ID: ph.ID, Name: ph.Name, Order: ph.Order, Weight: ph.Weight})
}

// Progress godoc
// @Summary      Avance ponderado del proyecto
// @Tags         projects
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProgressResponse
// @Router       /api/projects/{id}/progress [get]
func (h *ProjectHandler) Progress(c *fiber.Ctx) error {
	id := c.Params("id")
	pct, err := h.uc.Progress(c.UserContext(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProgressResponse{ProjectID: id, Progress: pct})
}

// Report godoc
// @Summary      Informe PDF del proyecto
// @Tags         projects
// @Produce      application/pdf
// @Security     Bearer
// @Param        id   path  string  true  "ID del proyecto"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/report [get]
func (h *ProjectHandler) Report(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Report(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Finalize godoc
// @Summary      Finalizar proyecto
// @Description  Marca el proyecto finalizado y completa como sistema los entregables aceptados.
// @Tags         projects
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "ID del proyecto"
// @Success      200  {object}  dto.FinalizeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/projects/{id}/finalize [post]
func (h *ProjectHandler) Finalize(c *fiber.Ctx) error {
	id := c.Params("id")
	done, err := h.deliverables.FinalizeProject(c.UserContext(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.FinalizeResponse{ProjectID: id, Completed: make([]dto.DeliverableResponse, 0, len(done))}
	for _, d := range done {
		out.Completed = append(out.Completed, toDeliverableResponse(d, false))
	}
	return c.JSON(out)
}
