package handlers

type InitialSignUpRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type SetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CompleteSignUpRequest struct {
	Email                    string `json:"email"`
	Name                     string `json:"name"`
	Sex                      string `json:"sex"`
	PhoneNumber              string `json:"phoneNumber"`
	UniversityName           string `json:"universityName"`
	UniversityRegistrationID string `json:"universityRegistrationId"`
	CourseProgrammeName      string `json:"courseProgrammeName"`
	EnrolledYear             string `json:"enrolledYear"`
	BatchNo                  int    `json:"batchNo"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserResponse struct {
	ID               uint   `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	Role             string `json:"role"`
	BatchNo          *int   `json:"batchNo,omitempty"`
	EnrollmentStatus string `json:"enrollmentStatus,omitempty"`
	ProfileCompleted bool   `json:"profileCompleted"`
}
