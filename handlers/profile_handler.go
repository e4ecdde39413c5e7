package handlers

import (
	"encoding/json"
	"strings"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Image *string `json:"image" validate:"omitempty,url"`
	Bio   *string `json:"bio"`

	Subjects     []string        `json:"subjects"`
	HourlyRate   *float64        `json:"hourly_rate" validate:"omitempty,gte=0"`
	Education    *string         `json:"education"`
	Experience   *string         `json:"experience"`
	Availability json.RawMessage `json:"availability"`

	Interests  *string `json:"interests"`
	GradeLevel *string `json:"grade_level" validate:"omitempty,max=50"`
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	user, err := h.loadUser(c, who)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"user": user, "profile": user.RoleProfile()})
}

// UpdateProfile patches the account and the profile matching the caller's
// role. Fields that belong to another role are rejected.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}
	if err := checkProfileFields(who.Role, req); err != nil {
		return serviceError(c, err)
	}

	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		userUpdates := map[string]any{}
		if req.Name != nil {
			userUpdates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Image != nil {
			userUpdates["image"] = *req.Image
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", who.ID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		switch who.Role {
		case models.RoleTutor:
			updates := map[string]any{}
			if req.Subjects != nil {
				updates["subjects"] = models.JoinSubjects(req.Subjects)
			}
			if req.HourlyRate != nil {
				updates["hourly_rate"] = *req.HourlyRate
			}
			if req.Bio != nil {
				updates["bio"] = *req.Bio
			}
			if req.Education != nil {
				updates["education"] = *req.Education
			}
			if req.Experience != nil {
				updates["experience"] = *req.Experience
			}
			if len(req.Availability) > 0 {
				updates["availability"] = datatypes.JSON(req.Availability)
			}
			return upsertProfile(tx, &models.TutorProfile{UserID: who.ID}, updates)
		case models.RoleStudent:
			updates := map[string]any{}
			if req.Bio != nil {
				updates["bio"] = *req.Bio
			}
			if req.Interests != nil {
				updates["interests"] = *req.Interests
			}
			if req.GradeLevel != nil {
				updates["grade_level"] = *req.GradeLevel
			}
			return upsertProfile(tx, &models.StudentProfile{UserID: who.ID}, updates)
		}
		return nil
	})
	if err != nil {
		return serviceError(c, err)
	}
	return h.GetProfile(c)
}

// upsertProfile creates the role profile if it is missing, then writes only
// the provided columns.
func upsertProfile(tx *gorm.DB, profile any, updates map[string]any) error {
	if err := tx.FirstOrCreate(profile).Error; err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(profile).Updates(updates).Error
}

func checkProfileFields(role models.Role, req UpdateProfileRequest) error {
	tutorOnly := req.Subjects != nil || req.HourlyRate != nil || req.Education != nil ||
		req.Experience != nil || len(req.Availability) > 0
	studentOnly := req.Interests != nil || req.GradeLevel != nil

	if tutorOnly && role != models.RoleTutor {
		return services.InvalidArgument("tutor profile fields can only be set by tutors")
	}
	if studentOnly && role != models.RoleStudent {
		return services.InvalidArgument("student profile fields can only be set by students")
	}
	if req.Bio != nil && role == models.RoleAdmin {
		return services.InvalidArgument("admins have no profile")
	}
	if len(req.Availability) > 0 && !json.Valid(req.Availability) {
		return services.InvalidArgument("availability must be valid JSON")
	}
	return nil
}
