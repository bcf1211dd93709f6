package dto

// CreateProjectRequest payload for POST /projects.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// InviteRequest payload for POST /projects/:projectId/invites.
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AcceptInviteRequest payload for POST /invites/accept.
type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// ProjectResponse is the public shape of a project.
type ProjectResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// MembershipResponse is the public shape of a membership.
type MembershipResponse struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	Role      string `json:"role"`
}
