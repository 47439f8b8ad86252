package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/novashelf/novashelf/internal/lib/jwt"
	"github.com/novashelf/novashelf/internal/lib/password"
	"github.com/novashelf/novashelf/internal/models"
	"github.com/novashelf/novashelf/internal/services/auth"
	"github.com/novashelf/novashelf/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateOTP(ctx context.Context, userUID, code string, expiresAt time.Time) error {
	args := m.Called(ctx, userUID, code, expiresAt)
	return args.Error(0)
}

func (m *UserRepoMock) MarkEmailVerified(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *UserRepoMock) DeleteUser(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

// Мок для Mailer
type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) SendOTPEmail(email, name, code string) error {
	args := m.Called(email, name, code)
	return args.Error(0)
}

func (m *MailerMock) SendWelcomeEmail(email, name string) error {
	args := m.Called(email, name)
	return args.Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(userUID, name, role string) (string, error) {
	args := m.Called(userUID, name, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(tokenStr string) (*customjwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func newService(repo *UserRepoMock, mailer *MailerMock, jwtMock *JwtMakerMock) *auth.Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	return auth.New(repo, mailer, jwtMock, logger)
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		setupMocks func(r *UserRepoMock, m *MailerMock)
		wantErr    error
		wantRole   string
	}{
		{
			name: "successful registration with default role",
			role: "",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByEmail", mock.Anything, "new@example.com").
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Email == "new@example.com" &&
						u.Role == models.RoleReader &&
						!u.IsEmailVerified &&
						u.OTP != nil && len(*u.OTP) == 6 &&
						u.OTPExpires != nil && u.OTPExpires.After(time.Now())
				})).Return("uid-1", nil).Once()
				m.On("SendOTPEmail", "new@example.com", "Reader", mock.Anything).
					Return(nil).Once()
			},
			wantRole: models.RoleReader,
		},
		{
			name: "unknown role falls back to reader",
			role: "admin",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByEmail", mock.Anything, "new@example.com").
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Role == models.RoleReader
				})).Return("uid-1", nil).Once()
				m.On("SendOTPEmail", "new@example.com", "Reader", mock.Anything).
					Return(nil).Once()
			},
			wantRole: models.RoleReader,
		},
		{
			name: "email already taken",
			role: "author",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByEmail", mock.Anything, "new@example.com").
					Return(&models.User{UID: "existing"}, nil).Once()
			},
			wantErr: auth.ErrEmailTaken,
		},
		{
			name: "delivery failure rolls back registration",
			role: "reader",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByEmail", mock.Anything, "new@example.com").
					Return(nil, repository.ErrNotFound).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).Return("uid-1", nil).Once()
				m.On("SendOTPEmail", "new@example.com", "Reader", mock.Anything).
					Return(errors.New("smtp down")).Once()
				// Компенсирующее удаление только что созданной записи
				r.On("DeleteUser", mock.Anything, "uid-1").Return(nil).Once()
			},
			wantErr: auth.ErrDeliveryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			mailer := new(MailerMock)
			svc := newService(repo, mailer, new(JwtMakerMock))

			tt.setupMocks(repo, mailer)

			result, err := svc.Register(context.Background(), "Reader", "new@example.com", "password123", tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-1", result.UserUID)
				assert.Equal(t, tt.wantRole, result.Role)
				assert.True(t, result.RequiresVerification)
			}

			repo.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}

func TestService_VerifyOTP(t *testing.T) {
	validCode := "123456"
	future := time.Now().Add(5 * time.Minute)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name       string
		code       string
		setupMocks func(r *UserRepoMock, m *MailerMock, j *JwtMakerMock)
		wantErr    error
	}{
		{
			name: "successful verification issues token",
			code: validCode,
			setupMocks: func(r *UserRepoMock, m *MailerMock, j *JwtMakerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", Name: "Reader", Email: "r@example.com",
					Role: models.RoleReader, OTP: &validCode, OTPExpires: &future,
				}, nil).Once()
				r.On("MarkEmailVerified", mock.Anything, "uid-1").Return(nil).Once()
				m.On("SendWelcomeEmail", "r@example.com", "Reader").Return(nil).Maybe()
				j.On("GenerateToken", "uid-1", "Reader", models.RoleReader).
					Return("token-1", nil).Once()
			},
		},
		{
			name: "wrong code",
			code: "654321",
			setupMocks: func(r *UserRepoMock, m *MailerMock, j *JwtMakerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", OTP: &validCode, OTPExpires: &future,
				}, nil).Once()
			},
			wantErr: auth.ErrInvalidOTP,
		},
		{
			name: "expired code",
			code: validCode,
			setupMocks: func(r *UserRepoMock, m *MailerMock, j *JwtMakerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", OTP: &validCode, OTPExpires: &past,
				}, nil).Once()
			},
			wantErr: auth.ErrInvalidOTP,
		},
		{
			name: "no pending code",
			code: validCode,
			setupMocks: func(r *UserRepoMock, m *MailerMock, j *JwtMakerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", IsEmailVerified: true,
				}, nil).Once()
			},
			wantErr: auth.ErrInvalidOTP,
		},
		{
			name: "unknown user",
			code: validCode,
			setupMocks: func(r *UserRepoMock, m *MailerMock, j *JwtMakerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: auth.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			mailer := new(MailerMock)
			jwtMock := new(JwtMakerMock)
			svc := newService(repo, mailer, jwtMock)

			tt.setupMocks(repo, mailer, jwtMock)

			result, err := svc.VerifyOTP(context.Background(), "uid-1", tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "token-1", result.Token)
				assert.Equal(t, "uid-1", result.Profile.UID)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestService_VerifyOTP_WelcomeFailureDoesNotAffectResult(t *testing.T) {
	code := "123456"
	future := time.Now().Add(5 * time.Minute)

	repo := new(UserRepoMock)
	mailer := new(MailerMock)
	jwtMock := new(JwtMakerMock)
	svc := newService(repo, mailer, jwtMock)

	repo.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
		UID: "uid-1", Name: "Reader", Email: "r@example.com",
		Role: models.RoleReader, OTP: &code, OTPExpires: &future,
	}, nil).Once()
	repo.On("MarkEmailVerified", mock.Anything, "uid-1").Return(nil).Once()
	mailer.On("SendWelcomeEmail", "r@example.com", "Reader").
		Return(errors.New("smtp down")).Maybe()
	jwtMock.On("GenerateToken", "uid-1", "Reader", models.RoleReader).
		Return("token-1", nil).Once()

	result, err := svc.VerifyOTP(context.Background(), "uid-1", code)
	require.NoError(t, err)
	assert.Equal(t, "token-1", result.Token)
}

func TestService_ResendOTP(t *testing.T) {
	oldCode := "111111"
	future := time.Now().Add(5 * time.Minute)

	tests := []struct {
		name       string
		setupMocks func(r *UserRepoMock, m *MailerMock)
		wantErr    error
	}{
		{
			name: "successful resend replaces the code",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", Name: "Reader", Email: "r@example.com",
					OTP: &oldCode, OTPExpires: &future,
				}, nil).Once()
				r.On("UpdateOTP", mock.Anything, "uid-1",
					mock.MatchedBy(func(code string) bool { return len(code) == 6 && code != oldCode }),
					mock.Anything).Return(nil).Once()
				m.On("SendOTPEmail", "r@example.com", "Reader", mock.Anything).
					Return(nil).Once()
			},
		},
		{
			name: "already verified",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", IsEmailVerified: true,
				}, nil).Once()
			},
			wantErr: auth.ErrAlreadyVerified,
		},
		{
			name: "unknown user",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: auth.ErrUserNotFound,
		},
		{
			name: "delivery failure keeps the new code in place",
			setupMocks: func(r *UserRepoMock, m *MailerMock) {
				r.On("GetUserByID", mock.Anything, "uid-1").Return(&models.User{
					UID: "uid-1", Name: "Reader", Email: "r@example.com",
					OTP: &oldCode, OTPExpires: &future,
				}, nil).Once()
				r.On("UpdateOTP", mock.Anything, "uid-1", mock.Anything, mock.Anything).
					Return(nil).Once()
				m.On("SendOTPEmail", "r@example.com", "Reader", mock.Anything).
					Return(errors.New("smtp down")).Once()
				// DeleteUser не вызывается: откат только при первичной регистрации
			},
			wantErr: auth.ErrDeliveryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			mailer := new(MailerMock)
			svc := newService(repo, mailer, new(JwtMakerMock))

			tt.setupMocks(repo, mailer)

			err := svc.ResendOTP(context.Background(), "uid-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			mailer.AssertExpectations(t)
			repo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	verifiedUser := &models.User{
		UID: "uid-1", Name: "Reader", Email: "r@example.com",
		PasswordHash: hashed, Role: models.RoleReader, IsEmailVerified: true,
	}
	unverifiedUser := &models.User{
		UID: "uid-2", Name: "Newbie", Email: "n@example.com",
		PasswordHash: hashed, Role: models.RoleReader, IsEmailVerified: false,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantErr    error
	}{
		{
			name:     "successful login",
			email:    "r@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "r@example.com").
					Return(verifiedUser, nil).Once()
				j.On("GenerateToken", "uid-1", "Reader", models.RoleReader).
					Return("token-1", nil).Once()
			},
		},
		{
			name:     "unknown email",
			email:    "missing@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "missing@example.com").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "r@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "r@example.com").
					Return(verifiedUser, nil).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "unverified account is rejected distinctly",
			email:    "n@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByEmail", mock.Anything, "n@example.com").
					Return(unverifiedUser, nil).Once()
			},
			wantErr: auth.ErrNotVerified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := newService(repo, new(MailerMock), jwtMock)

			tt.setupMocks(repo, jwtMock)

			result, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "token-1", result.Token)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}
