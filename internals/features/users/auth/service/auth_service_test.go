package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gerejaku_backend/internals/constants"
	churchModel "gerejaku_backend/internals/features/churches/churches/model"
	"gerejaku_backend/internals/features/users/auth/dto"
	authModel "gerejaku_backend/internals/features/users/auth/model"
	userModel "gerejaku_backend/internals/features/users/users/model"
	helperAuth "gerejaku_backend/internals/helpers/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeAuthRepo struct {
	users    map[uuid.UUID]*userModel.UserModel
	churches map[uuid.UUID]*churchModel.ChurchModel
	tokens   []*authModel.RefreshTokenModel
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		users:    map[uuid.UUID]*userModel.UserModel{},
		churches: map[uuid.UUID]*churchModel.ChurchModel{},
	}
}

func (f *fakeAuthRepo) FindUserByEmail(ctx context.Context, email string) (*userModel.UserModel, error) {
	for _, u := range f.users {
		if userModel.NormalizeEmail(u.UserEmail) == userModel.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByGoogleID(ctx context.Context, googleID string) (*userModel.UserModel, error) {
	for _, u := range f.users {
		if u.UserGoogleID != nil && *u.UserGoogleID == googleID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByID(ctx context.Context, userID uuid.UUID) (*userModel.UserModel, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindChurch(ctx context.Context, churchID uuid.UUID) (*churchModel.ChurchModel, error) {
	if ch, ok := f.churches[churchID]; ok {
		return ch, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := f.FindUserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeAuthRepo) CreateChurchWithOwner(ctx context.Context, church *churchModel.ChurchModel, owner *userModel.UserModel) error {
	church.ChurchID = uuid.New()
	owner.UserID = uuid.New()
	owner.UserChurchID = church.ChurchID
	f.churches[church.ChurchID] = church
	f.users[owner.UserID] = owner
	return nil
}

func (f *fakeAuthRepo) LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error {
	gid := googleID
	f.users[userID].UserGoogleID = &gid
	return nil
}

func (f *fakeAuthRepo) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return nil
}

func (f *fakeAuthRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	f.users[userID].UserPassword = &hash
	return nil
}

func (f *fakeAuthRepo) CreateRefreshToken(ctx context.Context, rt *authModel.RefreshTokenModel) error {
	rt.ID = uuid.New()
	f.tokens = append(f.tokens, rt)
	return nil
}

func (f *fakeAuthRepo) FindRefreshToken(ctx context.Context, hash []byte) (*authModel.RefreshTokenModel, error) {
	for _, t := range f.tokens {
		if bytes.Equal(t.Token, hash) {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, t := range f.tokens {
		if t.ID == id && t.RevokedAt == nil {
			t.RevokedAt = &at
		}
	}
	return nil
}

func (f *fakeAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID, at time.Time) error {
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &at
		}
	}
	return nil
}

func (f *fakeAuthRepo) PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeAuthRepo) activeTokens(userID uuid.UUID) int {
	n := 0
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

func newTestService(repo *fakeAuthRepo) *AuthService {
	return &AuthService{
		Repo:          repo,
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		BcryptCost:    bcrypt.MinCost,
		Now:           time.Now,
	}
}

func registerGrace(t *testing.T, svc *AuthService) *Session {
	t.Helper()
	sess, err := svc.RegisterChurch(context.Background(), dto.RegisterChurchRequest{
		ChurchName:     "Grace Church",
		ChurchTimezone: "UTC",
		FullName:       "Ruth Owner",
		Email:          "Ruth@Example.com",
		Password:       "correct-horse",
	}, ClientMeta{UserAgent: "test", IP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return sess
}

func TestRegisterChurchIssuesOwnerSession(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	sess := registerGrace(t, svc)

	if sess.Church.ChurchSlug != "grace-church" {
		t.Errorf("slug = %q, want grace-church", sess.Church.ChurchSlug)
	}
	if sess.Church.ChurchSubscriptionTier != constants.TierFree {
		t.Errorf("tier = %q, want free", sess.Church.ChurchSubscriptionTier)
	}
	if sess.User.UserRole != constants.RoleOwner {
		t.Errorf("role = %q, want owner", sess.User.UserRole)
	}
	if sess.User.UserEmail != "ruth@example.com" {
		t.Errorf("email = %q, want lower-cased", sess.User.UserEmail)
	}

	claims, err := helperAuth.ParseAccessToken("access-secret", sess.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.ChurchID != sess.Church.ChurchID.String() || claims.Role != constants.RoleOwner {
		t.Errorf("claims = %+v", claims)
	}

	if len(repo.tokens) != 1 {
		t.Fatalf("stored %d refresh tokens, want 1", len(repo.tokens))
	}
	if !bytes.Equal(repo.tokens[0].Token, HashRefreshToken(sess.RefreshToken, "refresh-secret")) {
		t.Errorf("refresh token must be stored hashed")
	}
}

func TestRegisterChurchRejections(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	registerGrace(t, svc)

	tests := []struct {
		name string
		req  dto.RegisterChurchRequest
		want error
	}{
		{
			name: "email taken ignoring case",
			req:  dto.RegisterChurchRequest{ChurchName: "Other", FullName: "X", Email: "RUTH@example.com", Password: "longenough"},
			want: ErrEmailTaken,
		},
		{
			name: "bad timezone",
			req:  dto.RegisterChurchRequest{ChurchName: "Other", ChurchTimezone: "Mars/Base", FullName: "X", Email: "x@example.com", Password: "longenough"},
			want: ErrInvalidTimezone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterChurch(context.Background(), tt.req, ClientMeta{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	owner := registerGrace(t, svc).User

	hash, _ := svc.hashPassword("staff-pass")
	inactive := &userModel.UserModel{
		UserID:       uuid.New(),
		UserChurchID: owner.UserChurchID,
		UserFullName: "Gone",
		UserEmail:    "gone@example.com",
		UserPassword: &hash,
		UserRole:     constants.RoleStaff,
		UserIsActive: false,
	}
	repo.users[inactive.UserID] = inactive

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"ok", "ruth@example.com", "correct-horse", nil},
		{"ok mixed case email", "RUTH@EXAMPLE.COM", "correct-horse", nil},
		{"wrong password", "ruth@example.com", "nope", ErrBadCredentials},
		{"unknown email", "who@example.com", "correct-horse", ErrBadCredentials},
		{"deactivated", "gone@example.com", "staff-pass", ErrAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := svc.Login(context.Background(), tt.email, tt.password, ClientMeta{})
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("err = %v, want %v", err, tt.want)
				}
				return
			}
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if sess.User.UserID != owner.UserID {
				t.Errorf("logged in as %s, want owner", sess.User.UserID)
			}
			if sess.User.UserLastLoginAt == nil {
				t.Errorf("last login not recorded")
			}
		})
	}
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	first := registerGrace(t, svc)
	ctx := context.Background()

	second, err := svc.Refresh(ctx, first.RefreshToken, ClientMeta{})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if n := repo.activeTokens(first.User.UserID); n != 1 {
		t.Fatalf("active tokens = %d, want 1 after rotation", n)
	}

	// replaying the rotated token burns every session
	if _, err := svc.Refresh(ctx, first.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("reuse err = %v, want ErrRefreshInvalid", err)
	}
	if n := repo.activeTokens(first.User.UserID); n != 0 {
		t.Fatalf("active tokens = %d, want 0 after reuse", n)
	}
	if _, err := svc.Refresh(ctx, second.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("second token err = %v, want ErrRefreshInvalid", err)
	}
}

func TestRefreshRejectsGarbageAndAccessTokens(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	sess := registerGrace(t, svc)

	for _, raw := range []string{"", "not-a-jwt", sess.AccessToken} {
		if _, err := svc.Refresh(context.Background(), raw, ClientMeta{}); !errors.Is(err, ErrRefreshInvalid) {
			t.Errorf("Refresh(%q) err = %v, want ErrRefreshInvalid", raw, err)
		}
	}
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	sess := registerGrace(t, svc)
	sess.User.UserIsActive = false

	if _, err := svc.Refresh(context.Background(), sess.RefreshToken, ClientMeta{}); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("err = %v, want ErrAccountDisabled", err)
	}
}

func TestRevokeRefresh(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	sess := registerGrace(t, svc)
	ctx := context.Background()

	if err := svc.RevokeRefresh(ctx, "unknown"); err != nil {
		t.Fatalf("unknown token: %v", err)
	}
	if err := svc.RevokeRefresh(ctx, sess.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Refresh(ctx, sess.RefreshToken, ClientMeta{}); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("refresh after logout err = %v", err)
	}
}

func TestLoginGoogle(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	owner := registerGrace(t, svc).User

	idents := map[string]*GoogleIdentity{
		"ruth":     {Sub: "g-ruth", Email: "ruth@example.com", Name: "Ruth"},
		"stranger": {Sub: "g-x", Email: "stranger@example.com"},
		"hijack":   {Sub: "g-other", Email: "ruth@example.com"},
	}
	svc.VerifyGoogle = func(idToken string) (*GoogleIdentity, error) {
		if id, ok := idents[idToken]; ok {
			return id, nil
		}
		return nil, errors.New("bad signature")
	}
	ctx := context.Background()

	sess, err := svc.LoginGoogle(ctx, "ruth", ClientMeta{})
	if err != nil {
		t.Fatalf("first google login: %v", err)
	}
	if sess.User.UserID != owner.UserID || owner.UserGoogleID == nil || *owner.UserGoogleID != "g-ruth" {
		t.Fatalf("google id was not linked to the invited account")
	}
	if _, err := svc.LoginGoogle(ctx, "ruth", ClientMeta{}); err != nil {
		t.Fatalf("second google login: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"invalid token", "forged", ErrGoogleToken},
		{"no account", "stranger", ErrGoogleNotLinked},
		{"email already linked to another google id", "hijack", ErrGoogleNotLinked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.LoginGoogle(ctx, tt.token, ClientMeta{}); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	svc.VerifyGoogle = nil
	if _, err := svc.LoginGoogle(ctx, "ruth", ClientMeta{}); !errors.Is(err, ErrGoogleDisabled) {
		t.Fatalf("err = %v, want ErrGoogleDisabled", err)
	}
}

func TestChangePassword(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	owner := registerGrace(t, svc).User
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, owner.UserID, "wrong", "brand-new-pass"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong old err = %v", err)
	}
	if err := svc.ChangePassword(ctx, owner.UserID, "correct-horse", "correct-horse"); !errors.Is(err, ErrSamePassword) {
		t.Fatalf("same password err = %v", err)
	}
	if err := svc.ChangePassword(ctx, uuid.New(), "a", "b"); !errors.Is(err, ErrUserGone) {
		t.Fatalf("unknown user err = %v", err)
	}

	if err := svc.ChangePassword(ctx, owner.UserID, "correct-horse", "brand-new-pass"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if n := repo.activeTokens(owner.UserID); n != 0 {
		t.Errorf("active refresh tokens = %d, want 0", n)
	}
	if _, err := svc.Login(ctx, "ruth@example.com", "correct-horse", ClientMeta{}); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("old password still works: %v", err)
	}
	if _, err := svc.Login(ctx, "ruth@example.com", "brand-new-pass", ClientMeta{}); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestChangePasswordGoogleOnlyAccount(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	owner := registerGrace(t, svc).User
	owner.UserPassword = nil

	if err := svc.ChangePassword(context.Background(), owner.UserID, "x", "brand-new-pass"); !errors.Is(err, ErrNoPasswordOnRecord) {
		t.Fatalf("err = %v, want ErrNoPasswordOnRecord", err)
	}
}

func TestIssueSessionNeedsSecrets(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestService(repo)
	svc.RefreshSecret = ""

	_, err := svc.RegisterChurch(context.Background(), dto.RegisterChurchRequest{
		ChurchName: "Grace", FullName: "R", Email: "r@example.com", Password: "longenough",
	}, ClientMeta{})
	if !errors.Is(err, ErrSecretsMissing) {
		t.Fatalf("err = %v, want ErrSecretsMissing", err)
	}
}
