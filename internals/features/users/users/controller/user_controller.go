package controller

import (
	"errors"
	"strings"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/constants"
	authRepo "gerejaku_backend/internals/features/users/auth/repository"
	authService "gerejaku_backend/internals/features/users/auth/service"
	"gerejaku_backend/internals/features/users/users/dto"
	"gerejaku_backend/internals/features/users/users/model"
	"gerejaku_backend/internals/features/users/users/service"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound = fiber.NewError(fiber.StatusNotFound, "User not found")
	ErrEmailTaken   = fiber.NewError(fiber.StatusConflict, "Email is already registered")
	ErrEmptyUpdate  = fiber.NewError(fiber.StatusBadRequest, "Nothing to update")
)

type AdminUserController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAdminUserController(db *gorm.DB) *AdminUserController {
	return &AdminUserController{DB: db, Validator: validator.New()}
}

func actorOf(c *fiber.Ctx) (service.Actor, error) {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{UserID: userID, Role: helperAuth.GetRole(c)}, nil
}

func countActive(tx *gorm.DB, churchID uuid.UUID, role string) (int64, error) {
	q := tx.Model(&model.UserModel{}).Where("user_church_id = ? AND user_is_active = TRUE", churchID)
	if role != "" {
		q = q.Where("user_role = ?", role)
	}
	var n int64
	err := q.Session(&gorm.Session{}).Count(&n).Error
	return n, err
}

// lockTarget loads the user row FOR UPDATE inside tx, scoped to the church.
func lockTarget(tx *gorm.DB, churchID, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND user_church_id = ?", id, churchID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

// lockOwners serialises owner changes per church and returns the active owner count.
func lockOwners(tx *gorm.DB, churchID uuid.UUID) (int64, error) {
	var ids []uuid.UUID
	err := tx.Model(&model.UserModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_church_id = ? AND user_role = ? AND user_is_active = TRUE", churchID, constants.RoleOwner).
		Pluck("user_id", &ids).Error
	return int64(len(ids)), err
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
	}
	return id, nil
}

func (ac *AdminUserController) fail(op string, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return err
	}
	configs.Log.WithError(err).WithField("op", op).Error("[ERROR] admin users")
	return fiber.NewError(fiber.StatusInternalServerError, "Failed to process user")
}

// 🟢 GET /api/a/users?q=&role=&is_active=
func (ac *AdminUserController) ListUsers(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 25, 200)

	q := ac.DB.WithContext(c.UserContext()).Model(&model.UserModel{}).Where("user_church_id = ?", churchID)
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := helper.ContainsPattern(s)
		q = q.Where("(user_full_name ILIKE ? OR user_email ILIKE ?)", like, like)
	}
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		if !constants.IsValidRole(role) {
			return service.ErrInvalidRole
		}
		q = q.Where("user_role = ?", role)
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("is_active"))) {
	case "true", "1":
		q = q.Where("user_is_active = TRUE")
	case "false", "0":
		q = q.Where("user_is_active = FALSE")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return ac.fail("list", err)
	}
	var rows []model.UserModel
	if err := q.Order("user_full_name ASC").Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return ac.fail("list", err)
	}
	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "Users fetched", dto.FromModels(rows), &pg)
}

// 🟢 GET /api/a/users/:id
func (ac *AdminUserController) GetUser(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var u model.UserModel
	err = ac.DB.WithContext(c.UserContext()).
		Where("user_id = ? AND user_church_id = ?", id, churchID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return ac.fail("get", err)
	}
	return helper.JsonOK(c, "User fetched", dto.FromModel(&u))
}

// 🟢 POST /api/a/users
func (ac *AdminUserController) CreateUser(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if err := service.CheckGrant(actor.Role, req.Role); err != nil {
		return err
	}

	u := model.UserModel{
		UserChurchID: churchID,
		UserFullName: strings.TrimSpace(req.FullName),
		UserEmail:    model.NormalizeEmail(req.Email),
		UserRole:     req.Role,
		UserIsActive: true,
	}
	if req.Password != nil {
		hash, err := authService.HashPassword(*req.Password)
		if err != nil {
			return ac.fail("create", err)
		}
		u.UserPassword = &hash
	}

	tier := helperAuth.GetTier(c)
	err = ac.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		// owner rows double as the per-church lock for seat counting
		if _, err := lockOwners(tx, churchID); err != nil {
			return err
		}
		active, err := countActive(tx, churchID, "")
		if err != nil {
			return err
		}
		if err := service.CheckSeat(tier, active); err != nil {
			return err
		}
		var taken int64
		if err := tx.Model(&model.UserModel{}).
			Where("LOWER(user_email) = ?", u.UserEmail).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&u).Error
	})
	if helper.IsDuplicateKey(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return ac.fail("create", err)
	}

	configs.Log.WithField("user_id", u.UserID).WithField("by", actor.UserID).Info("[INFO] user created")
	return helper.JsonCreated(c, "User created", dto.FromModel(&u))
}

// 🟡 PATCH /api/a/users/:id
func (ac *AdminUserController) UpdateUser(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if req.Empty() {
		return ErrEmptyUpdate
	}

	var out model.UserModel
	err = ac.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		owners, err := lockOwners(tx, churchID)
		if err != nil {
			return err
		}
		target, err := lockTarget(tx, churchID, id)
		if err != nil {
			return err
		}
		ch := service.Change{Role: req.Role, IsActive: req.IsActive}
		if err := service.CheckChange(actor, target, ch, owners); err != nil {
			return err
		}
		if ch.Reactivates(target) {
			active, err := countActive(tx, churchID, "")
			if err != nil {
				return err
			}
			if err := service.CheckSeat(helperAuth.GetTier(c), active); err != nil {
				return err
			}
		}
		if err := tx.Model(target).Updates(req.ToUpdates()).Error; err != nil {
			return err
		}
		if req.IsActive != nil && !*req.IsActive {
			if err := authRepo.NewAuthRepository(tx).RevokeUserRefreshTokens(c.UserContext(), target.UserID, time.Now()); err != nil {
				return err
			}
		}
		return tx.First(&out, "user_id = ?", target.UserID).Error
	})
	if err != nil {
		return ac.fail("update", err)
	}
	return helper.JsonUpdated(c, "User updated", dto.FromModel(&out))
}

// 🔴 DELETE /api/a/users/:id
// Users are deactivated, never removed: attendance and follow-up history keep their author.
func (ac *AdminUserController) DeleteUser(c *fiber.Ctx) error {
	churchID, err := helperAuth.GetChurchID(c)
	if err != nil {
		return err
	}
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	off := false
	var out model.UserModel
	err = ac.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		owners, err := lockOwners(tx, churchID)
		if err != nil {
			return err
		}
		target, err := lockTarget(tx, churchID, id)
		if err != nil {
			return err
		}
		if err := service.CheckChange(actor, target, service.Change{IsActive: &off}, owners); err != nil {
			return err
		}
		if err := tx.Model(target).Update("user_is_active", false).Error; err != nil {
			return err
		}
		if err := authRepo.NewAuthRepository(tx).RevokeUserRefreshTokens(c.UserContext(), target.UserID, time.Now()); err != nil {
			return err
		}
		out = *target
		out.UserIsActive = false
		return nil
	})
	if err != nil {
		return ac.fail("deactivate", err)
	}
	return helper.JsonDeleted(c, "User deactivated", dto.FromModel(&out))
}
