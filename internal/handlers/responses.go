package handlers

import (
	"time"

	"github.com/jikulumessu/api/internal/models"
)

// UserResponse is the authenticated view of an account. Password hashes
// never leave the service layer.
type UserResponse struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone"`
	BirthDate     time.Time `json:"birth_date"`
	Province      string    `json:"province"`
	Municipality  string    `json:"municipality"`
	Neighborhood  string    `json:"neighborhood"`
	Services      []string  `json:"services"`
	ContractType  string    `json:"contract_type"`
	Availability  string    `json:"availability"`
	FacebookURL   *string   `json:"facebook_url,omitempty"`
	InstagramURL  *string   `json:"instagram_url,omitempty"`
	TikTokURL     *string   `json:"tiktok_url,omitempty"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProviderResponse is the public listing view. It carries no email, role, or
// status; only active accounts are ever rendered this way.
type ProviderResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Phone         string    `json:"phone"`
	Province      string    `json:"province"`
	Municipality  string    `json:"municipality"`
	Neighborhood  string    `json:"neighborhood"`
	Services      []string  `json:"services"`
	ContractType  string    `json:"contract_type"`
	Availability  string    `json:"availability"`
	FacebookURL   *string   `json:"facebook_url,omitempty"`
	InstagramURL  *string   `json:"instagram_url,omitempty"`
	TikTokURL     *string   `json:"tiktok_url,omitempty"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessageResponse is the wire form of a message.
type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Name:          u.Name(),
		Age:           u.Age(time.Now()),
		Email:         u.Email,
		Phone:         u.Phone,
		BirthDate:     u.BirthDate,
		Province:      u.Province,
		Municipality:  u.Municipality,
		Neighborhood:  u.Neighborhood,
		Services:      u.Services,
		ContractType:  u.ContractType,
		Availability:  u.Availability,
		FacebookURL:   u.FacebookURL,
		InstagramURL:  u.InstagramURL,
		TikTokURL:     u.TikTokURL,
		AvatarURL:     u.AvatarURL,
		Role:          string(u.Role),
		Status:        string(u.Status),
		AverageRating: u.AverageRating,
		TotalReviews:  u.TotalReviews,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toProviderResponse(u *models.User) *ProviderResponse {
	return &ProviderResponse{
		ID:            u.ID,
		Name:          u.Name(),
		Age:           u.Age(time.Now()),
		Phone:         u.Phone,
		Province:      u.Province,
		Municipality:  u.Municipality,
		Neighborhood:  u.Neighborhood,
		Services:      u.Services,
		ContractType:  u.ContractType,
		Availability:  u.Availability,
		FacebookURL:   u.FacebookURL,
		InstagramURL:  u.InstagramURL,
		TikTokURL:     u.TikTokURL,
		AvatarURL:     u.AvatarURL,
		AverageRating: u.AverageRating,
		TotalReviews:  u.TotalReviews,
		CreatedAt:     u.CreatedAt,
	}
}

func toMessageResponse(m *models.Message) *MessageResponse {
	return &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}
