package dto

// CreateUserRequest is the admin payload provisioning an account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ADMIN STUDENT SUPERVISOR ASSESSOR"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest patches mutable account fields; nil means unchanged.
type UpdateUserRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN STUDENT SUPERVISOR ASSESSOR"`
	Active   *bool   `json:"active,omitempty"`
}

// ListUsersQuery captures the supported list filters.
type ListUsersQuery struct {
	Role     string `form:"role" validate:"omitempty,oneof=ADMIN STUDENT SUPERVISOR ASSESSOR"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// SupervisorOption is one selectable supervisor in the student's request
// form.
type SupervisorOption struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}
