package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/constants"
	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/features/users/auth/dto"
	authModel "gerejaku_backend/internals/features/users/auth/model"
	"gerejaku_backend/internals/features/users/auth/repository"
	userModel "gerejaku_backend/internals/features/users/users/model"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/helpers/auth"
	"gerejaku_backend/internals/helpers/dbtime"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = fiber.NewError(fiber.StatusConflict, "Email is already registered")
	ErrBadCredentials     = fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	ErrAccountDisabled    = fiber.NewError(fiber.StatusForbidden, "Your account has been deactivated. Contact your church admin.")
	ErrChurchGone         = fiber.NewError(fiber.StatusForbidden, "Church is no longer available")
	ErrGoogleDisabled     = fiber.NewError(fiber.StatusServiceUnavailable, "Google login is not configured")
	ErrGoogleToken        = fiber.NewError(fiber.StatusUnauthorized, "Invalid Google ID token")
	ErrGoogleNotLinked    = fiber.NewError(fiber.StatusUnauthorized, "No account is registered for this Google email")
	ErrInvalidTimezone    = fiber.NewError(fiber.StatusBadRequest, "church_timezone must be a valid IANA timezone")
	ErrSecretsMissing     = fiber.NewError(fiber.StatusInternalServerError, "Token secrets are not configured")
	ErrRefreshInvalid     = fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired refresh token")
	ErrWrongPassword      = fiber.NewError(fiber.StatusUnauthorized, "Old password is incorrect")
	ErrSamePassword       = fiber.NewError(fiber.StatusBadRequest, "New password must differ from the old one")
	ErrNoPasswordOnRecord = fiber.NewError(fiber.StatusBadRequest, "This account signs in with Google and has no password")
	ErrUserGone           = fiber.NewError(fiber.StatusUnauthorized, "Account no longer exists")
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

type GoogleVerifier func(idToken string) (*GoogleIdentity, error)

// NewGoogleVerifier checks the token signature and audience against clientID.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	if strings.TrimSpace(clientID) == "" {
		return nil
	}
	return func(idToken string) (*GoogleIdentity, error) {
		v := googleAuthIDTokenVerifier.Verifier{}
		if err := v.VerifyIDToken(idToken, []string{clientID}); err != nil {
			return nil, err
		}
		claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
		if err != nil {
			return nil, err
		}
		return &GoogleIdentity{Sub: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
	}
}

// ClientMeta is stored next to each refresh token.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// Session is the outcome of every successful sign-in or refresh.
type Session struct {
	User             *userModel.UserModel
	Church           *churchModel.ChurchModel
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type AuthService struct {
	Repo          repository.AuthRepository
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	VerifyGoogle  GoogleVerifier
	BcryptCost    int
	Now           func() time.Time
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		Repo:          repository.NewAuthRepository(db),
		AccessSecret:  configs.JWTSecret,
		RefreshSecret: configs.JWTRefreshSecret,
		AccessTTL:     configs.AccessTTL,
		RefreshTTL:    configs.RefreshTTL,
		VerifyGoogle:  NewGoogleVerifier(configs.GoogleClientID),
		BcryptCost:    bcrypt.DefaultCost,
		Now:           time.Now,
	}
}

func (s *AuthService) now() time.Time { return s.Now().UTC() }

/* ==========================
   REGISTER CHURCH
========================== */

// RegisterChurch onboards a tenant: a free-tier church plus its owner account.
func (s *AuthService) RegisterChurch(ctx context.Context, req dto.RegisterChurchRequest, meta ClientMeta) (*Session, error) {
	tz := strings.TrimSpace(req.ChurchTimezone)
	if tz == "" {
		tz = configs.DefaultTimezone
	}
	if tz == "" {
		tz = "UTC"
	}
	if !dbtime.IsValidTimezone(tz) {
		return nil, ErrInvalidTimezone
	}

	email := userModel.NormalizeEmail(req.Email)
	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.ChurchName)
	church := &churchModel.ChurchModel{
		ChurchName:                name,
		ChurchSlug:                helper.Slugify(name, 120),
		ChurchBrandColor:          "#1E3A8A",
		ChurchTimezone:            tz,
		ChurchKioskSessionTimeout: churchModel.DefaultKioskSessionTimeout,
		ChurchSubscriptionTier:    constants.TierFree,
	}
	owner := &userModel.UserModel{
		UserFullName: strings.TrimSpace(req.FullName),
		UserEmail:    email,
		UserPassword: &hash,
		UserRole:     constants.RoleOwner,
		UserIsActive: true,
	}
	if err := s.Repo.CreateChurchWithOwner(ctx, church, owner); err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issueSession(ctx, owner, church, meta)
}

/* ==========================
   LOGIN
========================== */

func (s *AuthService) Login(ctx context.Context, email, password string, meta ClientMeta) (*Session, error) {
	user, err := s.Repo.FindUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.HasPassword() || !CheckPassword(*user.UserPassword, password) {
		return nil, ErrBadCredentials
	}
	return s.signIn(ctx, user, meta)
}

/* ==========================
   LOGIN GOOGLE
========================== */

// LoginGoogle never creates accounts: users are invited by their church first.
// An invited user signing in with Google for the first time gets the Google id linked by email.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string, meta ClientMeta) (*Session, error) {
	if s.VerifyGoogle == nil {
		return nil, ErrGoogleDisabled
	}
	ident, err := s.VerifyGoogle(idToken)
	if err != nil || ident == nil || ident.Sub == "" {
		return nil, ErrGoogleToken
	}

	user, err := s.Repo.FindUserByGoogleID(ctx, ident.Sub)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if strings.TrimSpace(ident.Email) == "" {
			return nil, ErrGoogleNotLinked
		}
		user, err = s.Repo.FindUserByEmail(ctx, ident.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoogleNotLinked
		}
		if err != nil {
			return nil, err
		}
		if user.UserGoogleID != nil && *user.UserGoogleID != ident.Sub {
			return nil, ErrGoogleNotLinked
		}
		if user.UserGoogleID == nil {
			if err := s.Repo.LinkGoogleID(ctx, user.UserID, ident.Sub); err != nil {
				return nil, err
			}
			sub := ident.Sub
			user.UserGoogleID = &sub
		}
	} else if err != nil {
		return nil, err
	}

	return s.signIn(ctx, user, meta)
}

func (s *AuthService) signIn(ctx context.Context, user *userModel.UserModel, meta ClientMeta) (*Session, error) {
	if !user.UserIsActive {
		return nil, ErrAccountDisabled
	}
	church, err := s.Repo.FindChurch(ctx, user.UserChurchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChurchGone
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.Repo.TouchLastLogin(ctx, user.UserID, now); err != nil {
		configs.Log.WithError(err).WithField("user_id", user.UserID).Warn("[WARN] touch last login")
	} else {
		user.UserLastLoginAt = &now
	}
	return s.issueSession(ctx, user, church, meta)
}

// ToSessionUser is what login, refresh and /me return about the caller.
func ToSessionUser(u *userModel.UserModel, ch *churchModel.ChurchModel) dto.SessionUser {
	return dto.SessionUser{
		UserID:       u.UserID,
		FullName:     u.UserFullName,
		Email:        u.UserEmail,
		Role:         u.UserRole,
		ChurchID:     ch.ChurchID,
		ChurchName:   ch.ChurchName,
		ChurchSlug:   ch.ChurchSlug,
		Tier:         ch.ChurchSubscriptionTier,
		Timezone:     ch.ChurchTimezone,
		Capabilities: helperAuth.CapabilitiesForRole(u.UserRole).List(),
	}
}

func strptr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) > 255 {
		s = s[:255]
	}
	return &s
}

func newRefreshRow(s *AuthService, sess *Session, meta ClientMeta) *authModel.RefreshTokenModel {
	return &authModel.RefreshTokenModel{
		UserID:    sess.User.UserID,
		Token:     HashRefreshToken(sess.RefreshToken, s.RefreshSecret),
		ExpiresAt: sess.RefreshExpiresAt,
		UserAgent: strptr(meta.UserAgent),
		IP:        strptr(meta.IP),
	}
}
