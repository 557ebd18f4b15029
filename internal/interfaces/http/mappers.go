package http

import (
	"time"

	"github.com/jhoicas/Proyectos-api/internal/application/deliverable"
	"github.com/jhoicas/Proyectos-api/internal/application/dto"
	"github.com/jhoicas/Proyectos-api/internal/domain/entity"
)

func toProjectResponse(p *entity.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Status:      p.Status,
		StudentID:   p.StudentID,
		DirectorID:  p.DirectorID,
		EvaluatorID: p.EvaluatorID,
		WorkAreaID:  p.WorkAreaID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toMembershipResponse(m *entity.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:         m.ID,
		ProjectID:  m.ProjectID,
		UserID:     m.UserID,
		Role:       string(m.Role),
		Status:     m.Status,
		AssignedAt: m.AssignedAt,
	}
}

func toInvitationResponse(i *entity.Invitation) dto.InvitationResponse {
	return dto.InvitationResponse{
		Code:      i.Code,
		ProjectID: i.ProjectID,
		Role:      string(i.Role),
		InvitedBy: i.InvitedBy,
		Status:    i.Status,
		Uses:      i.Uses,
		MaxUses:   i.MaxUses,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

func toDeliverableResponse(d *entity.Deliverable, overdue bool) dto.DeliverableResponse {
	return dto.DeliverableResponse{
		ID:           d.ID,
		ProjectID:    d.ProjectID,
		PhaseID:      d.PhaseID,
		Title:        d.Title,
		State:        string(d.State),
		AssigneeID:   d.AssigneeID,
		DueDate:      d.DueDate,
		Observations: d.Observations,
		Overdue:      overdue,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toViewResponse(v deliverable.View) dto.DeliverableResponse {
	return toDeliverableResponse(v.Deliverable, v.Overdue)
}

func toCommentResponse(c *entity.DeliverableComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:            c.ID,
		DeliverableID: c.DeliverableID,
		UserID:        c.UserID,
		Text:          c.Text,
		AttachmentRef: c.AttachmentRef,
		Type:          c.Type,
		CreatedAt:     c.CreatedAt,
	}
}

func toHistoryResponse(h *deliverable.History) dto.HistoryResponse {
	out := dto.HistoryResponse{
		Transitions: make([]dto.TransitionResponse, 0, len(h.Transitions)),
		Comments:    make([]dto.CommentResponse, 0, len(h.Comments)),
	}
	for _, t := range h.Transitions {
		out.Transitions = append(out.Transitions, dto.TransitionResponse{
			From: string(t.FromState), To: string(t.ToState), ActorID: t.ActorID, CreatedAt: t.CreatedAt,
		})
	}
	for _, c := range h.Comments {
		out.Comments = append(out.Comments, toCommentResponse(c))
	}
	return out
}

// overdueNow marca de vencimiento para entregables devueltos tras una escritura.
func overdueNow(d *entity.Deliverable) bool {
	return d.IsOverdue(time.Now().UTC())
}
