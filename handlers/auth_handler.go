package handlers

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/notifications"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name       string   `json:"name" validate:"required,min=2,max=255"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=6"`
	Role       string   `json:"role" validate:"omitempty,oneof=STUDENT TUTOR"`
	Subjects   []string `json:"subjects"`
	HourlyRate *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	Bio        *string  `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a student or tutor account together with its role
// profile. Admin accounts are only seeded.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}
	role := models.RoleStudent
	if req.Role != "" {
		role = models.Role(req.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return serviceError(c, fmt.Errorf("hash password: %w", err))
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashedPassword),
		Role:     role,
	}
	err = h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return services.Conflict("Email already exists")
			}
			return err
		}
		switch role {
		case models.RoleTutor:
			profile := models.TutorProfile{UserID: user.ID, Subjects: models.JoinSubjects(req.Subjects), Bio: req.Bio}
			if req.HourlyRate != nil {
				profile.HourlyRate = *req.HourlyRate
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			user.TutorProfile = &profile
		case models.RoleStudent:
			profile := models.StudentProfile{UserID: user.ID, Bio: req.Bio}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			user.StudentProfile = &profile
		}
		return nil
	})
	if err != nil {
		return serviceError(c, err)
	}

	token, err := middleware.GenerateToken(h.Settings.JWTSecret, user.ID, user.Role, h.Settings.JWTTTL)
	if err != nil {
		return serviceError(c, fmt.Errorf("sign token: %w", err))
	}

	log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")
	notifications.SendAsync(h.Mailer, user.Name, user.Email, "Welcome!",
		fmt.Sprintf("<h1>Welcome, %s!</h1><p>Thank you for registering.</p>", html.EscapeString(user.Name)))

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, User: &user})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}

	var user models.User
	err := h.DB.WithContext(c.UserContext()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return serviceError(c, err)
		}
		return fail(c, fiber.StatusUnauthorized, codeUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return fail(c, fiber.StatusUnauthorized, codeUnauthorized, "Invalid email or password")
	}

	token, err := middleware.GenerateToken(h.Settings.JWTSecret, user.ID, user.Role, h.Settings.JWTTTL)
	if err != nil {
		return serviceError(c, fmt.Errorf("sign token: %w", err))
	}
	return c.JSON(AuthResponse{Token: token, User: &user})
}

// Me returns the caller with the profile matching their role.
func (h *Handler) Me(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	user, err := h.loadUser(c, who)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) loadUser(c *fiber.Ctx, who services.Identity) (*models.User, error) {
	var user models.User
	q := h.DB.WithContext(c.UserContext())
	switch who.Role {
	case models.RoleTutor:
		q = q.Preload("TutorProfile")
	case models.RoleStudent:
		q = q.Preload("StudentProfile")
	}
	if err := q.First(&user, "id = ?", who.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}
