package churches

import (
	"errors"
	"time"

	"gerejaku_backend/internals/configs"
	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	eventModel "gerejaku_backend/internals/features/events/events/model"
	memberModel "gerejaku_backend/internals/features/members/members/model"
	authService "gerejaku_backend/internals/features/users/auth/service"
	userModel "gerejaku_backend/internals/features/users/users/model"
	"gerejaku_backend/internals/helpers/dbtime"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonSeed struct {
	FirstName string  `json:"first_name"`
	Surname   string  `json:"surname"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Gender    *string `json:"gender"`
}

type DemoSeed struct {
	Church struct {
		Name     string `json:"name"`
		Slug     string `json:"slug"`
		Timezone string `json:"timezone"`
		Tier     string `json:"tier"`
	} `json:"church"`
	Users []struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	} `json:"users"`
	Families []struct {
		Head     PersonSeed   `json:"head"`
		Children []PersonSeed `json:"children"`
	} `json:"families"`
	Events []struct {
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		Location *string `json:"location"`
	} `json:"events"`
}

func ParseDemoSeed(raw []byte) (*DemoSeed, error) {
	var seed DemoSeed
	if err := sonic.Unmarshal(raw, &seed); err != nil {
		return nil, err
	}
	if seed.Church.Slug == "" || seed.Church.Name == "" {
		return nil, errors.New("demo seed: church name and slug are required")
	}
	return &seed, nil
}

func (p PersonSeed) member(churchID uuid.UUID, joined time.Time, parent *uuid.UUID) memberModel.MemberModel {
	return memberModel.MemberModel{
		MemberChurchID:  churchID,
		MemberFirstName: p.FirstName,
		MemberSurname:   p.Surname,
		MemberPhone:     p.Phone,
		MemberEmail:     p.Email,
		MemberGender:    p.Gender,
		MemberStatus:    memberModel.MemberStatusActive,
		MemberJoinedAt:  joined,
		MemberParentID:  parent,
	}
}

// SeedDemoChurch inserts the demo tenant once; an existing slug skips the whole seed.
func SeedDemoChurch(db *gorm.DB, seed *DemoSeed) error {
	var existing int64
	if err := db.Model(&churchModel.ChurchModel{}).
		Where("LOWER(church_slug) = LOWER(?)", seed.Church.Slug).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		configs.Log.Infof("ℹ️ demo church '%s' already exists, skipped", seed.Church.Slug)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		church := churchModel.ChurchModel{
			ChurchName:                seed.Church.Name,
			ChurchSlug:                seed.Church.Slug,
			ChurchBrandColor:          "#1E3A8A",
			ChurchTimezone:            seed.Church.Timezone,
			ChurchKioskModeEnabled:    true,
			ChurchKioskSessionTimeout: churchModel.DefaultKioskSessionTimeout,
			ChurchSubscriptionTier:    seed.Church.Tier,
		}
		if err := tx.Create(&church).Error; err != nil {
			return err
		}

		for _, u := range seed.Users {
			hash, err := authService.HashPassword(u.Password)
			if err != nil {
				return err
			}
			row := userModel.UserModel{
				UserChurchID: church.ChurchID,
				UserFullName: u.FullName,
				UserEmail:    userModel.NormalizeEmail(u.Email),
				UserPassword: &hash,
				UserRole:     u.Role,
				UserIsActive: true,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		joined := dbtime.LocalDay(time.Now(), dbtime.LoadLocation(church.ChurchTimezone))
		for _, f := range seed.Families {
			head := f.Head.member(church.ChurchID, joined, nil)
			if err := tx.Create(&head).Error; err != nil {
				return err
			}
			for _, ch := range f.Children {
				child := ch.member(church.ChurchID, joined, &head.MemberID)
				if err := tx.Create(&child).Error; err != nil {
					return err
				}
			}
		}

		for _, e := range seed.Events {
			ev := eventModel.EventModel{
				EventChurchID: church.ChurchID,
				EventName:     e.Name,
				EventType:     e.Type,
				EventLocation: e.Location,
				EventIsActive: true,
			}
			if err := tx.Create(&ev).Error; err != nil {
				return err
			}
		}

		configs.Log.Infof("✅ demo church '%s' seeded (%d users, %d families, %d events)",
			church.ChurchSlug, len(seed.Users), len(seed.Families), len(seed.Events))
		return nil
	})
}
