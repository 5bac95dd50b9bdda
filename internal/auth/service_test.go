package auth

import (
	"context"
	"testing"
	"time"

	"github.com/nmbsms/scholarship-backend/internal/blacklist"
	"github.com/nmbsms/scholarship-backend/internal/database/model"
	"github.com/nmbsms/scholarship-backend/internal/token"
	"github.com/nmbsms/scholarship-backend/internal/util"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testService(t *testing.T) (*Service, *gorm.DB, *blacklist.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, model.Migrate(db))

	maker := token.NewJWTMaker("test-secret", time.Hour)
	bl := blacklist.NewStore(db)
	return NewService(db, maker, bl), db, bl
}

func invite(t *testing.T, db *gorm.DB, email, inviteToken string) {
	t.Helper()
	tok := inviteToken
	require.NoError(t, db.Create(&model.Account{Email: email, Token: &tok}).Error)
}

func provision(t *testing.T, svc *Service, db *gorm.DB, email, inviteToken, password string) {
	t.Helper()
	ctx := context.Background()
	invite(t, db, email, inviteToken)
	require.NoError(t, svc.InitialSignUp(ctx, email, inviteToken))
	require.NoError(t, svc.SetPassword(ctx, email, password))
}

func TestInitialSignUp(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	invite(t, db, "a@x.com", "T1")

	require.NoError(t, svc.InitialSignUp(ctx, "a@x.com", "T1"))
	require.ErrorIs(t, svc.InitialSignUp(ctx, "a@x.com", "WRONG"), ErrInvalidCredentials)
	require.ErrorIs(t, svc.InitialSignUp(ctx, "b@x.com", "T1"), ErrInvalidCredentials)
	require.ErrorIs(t, svc.InitialSignUp(ctx, "a@x.com", ""), ErrInvalidCredentials)
	require.ErrorIs(t, svc.InitialSignUp(ctx, "", "T1"), ErrInvalidCredentials)

	// the gate is repeatable until the token is consumed
	require.NoError(t, svc.InitialSignUp(ctx, "a@x.com", "T1"))
}

func TestSetPassword_ConsumesInviteToken(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	invite(t, db, "a@x.com", "T1")

	require.NoError(t, svc.SetPassword(ctx, "a@x.com", "pw123456"))

	var account model.Account
	require.NoError(t, db.Where("email = ?", "a@x.com").First(&account).Error)
	require.Nil(t, account.Token)
	require.NoError(t, util.CheckPasswordHash("pw123456", account.Password))

	// a consumed token can never authorize again, not even as empty-vs-null
	require.ErrorIs(t, svc.InitialSignUp(ctx, "a@x.com", "T1"), ErrInvalidCredentials)
	require.ErrorIs(t, svc.InitialSignUp(ctx, "a@x.com", ""), ErrInvalidCredentials)
}

func TestSetPassword_UnknownAccount(t *testing.T) {
	svc, _, _ := testService(t)
	require.ErrorIs(t, svc.SetPassword(context.Background(), "ghost@x.com", "pw"), ErrNotFound)
}

func TestCompleteSignUp(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	provision(t, svc, db, "a@x.com", "T1", "pw123456")

	profile := Profile{
		Name:                     "Asha",
		Sex:                      "Female",
		PhoneNumber:              "0700000000",
		UniversityName:           "UDSM",
		UniversityRegistrationID: "2021-04-07788",
		CourseProgrammeName:      "BSc Computer Science",
		EnrolledYear:             "2021",
		BatchNo:                  4,
	}
	require.NoError(t, svc.CompleteSignUp(ctx, "a@x.com", profile))

	var account model.Account
	require.NoError(t, db.Where("email = ?", "a@x.com").First(&account).Error)
	require.Equal(t, model.RoleStudent, account.Role)
	require.NotNil(t, account.EnrollmentStatus)
	require.Equal(t, "Active", *account.EnrollmentStatus)
	require.NotNil(t, account.BatchNo)
	require.Equal(t, 4, *account.BatchNo)
	require.True(t, account.ProfileCompleted())

	status, err := svc.EnrollmentStatus(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "Active", status)

	require.ErrorIs(t, svc.CompleteSignUp(ctx, "ghost@x.com", profile), ErrNotFound)
}

func TestLogin(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	provision(t, svc, db, "a@x.com", "T1", "pw123456")

	tokenStr, account, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	require.Equal(t, "a@x.com", account.Email)

	maker := token.NewJWTMaker("test-secret", time.Hour)
	claims, err := maker.VerifyToken(tokenStr)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Subject)
}

func TestLogin_DoesNotLeakAccountExistence(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	provision(t, svc, db, "a@x.com", "T1", "pw123456")

	_, _, wrongPw := svc.Login(ctx, "a@x.com", "nope")
	_, _, unknown := svc.Login(ctx, "ghost@x.com", "nope")

	require.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
}

func TestLogin_PasswordNotSetYet(t *testing.T) {
	svc, db, _ := testService(t)
	invite(t, db, "a@x.com", "T1")

	_, _, err := svc.Login(context.Background(), "a@x.com", "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_TrimsEmailWhitespace(t *testing.T) {
	svc, db, _ := testService(t)
	provision(t, svc, db, "a@x.com", "T1", "pw123456")

	_, account, err := svc.Login(context.Background(), "  a@x.com ", "pw123456")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", account.Email)
}

func TestLogin_CarriesBatchClaim(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	provision(t, svc, db, "a@x.com", "T1", "pw123456")
	require.NoError(t, svc.CompleteSignUp(ctx, "a@x.com", Profile{Name: "Asha", BatchNo: 4}))

	tokenStr, _, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	claims, err := token.NewJWTMaker("test-secret", time.Hour).VerifyToken(tokenStr)
	require.NoError(t, err)
	require.NotNil(t, claims.BatchNo)
	require.Equal(t, 4, *claims.BatchNo)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, db, bl := testService(t)
	ctx := context.Background()
	provision(t, svc, db, "a@x.com", "T1", "pw123456")

	tokenStr, _, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tokenStr))

	revoked, err := bl.IsRevoked(ctx, tokenStr)
	require.NoError(t, err)
	require.True(t, revoked)

	// idempotent
	require.NoError(t, svc.Logout(ctx, tokenStr))
}

func TestLogout_GarbageToken(t *testing.T) {
	svc, _, _ := testService(t)
	require.ErrorIs(t, svc.Logout(context.Background(), "not.a.jwt"), token.ErrInvalidToken)
}

func TestResetPassword(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	provision(t, svc, db, "a@x.com", "T1", "old-pw-123")

	require.NoError(t, svc.ResetPassword(ctx, "a@x.com", "new-pw-456"))

	_, _, err := svc.Login(ctx, "a@x.com", "old-pw-123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "a@x.com", "new-pw-456")
	require.NoError(t, err)

	require.ErrorIs(t, svc.ResetPassword(ctx, "ghost@x.com", "pw"), ErrNotFound)
}

func TestResetPassword_BeforePasswordEverSet(t *testing.T) {
	// side-channel reset works from any stage once the account exists
	svc, db, _ := testService(t)
	ctx := context.Background()
	invite(t, db, "a@x.com", "T1")

	require.NoError(t, svc.ResetPassword(ctx, "a@x.com", "pw123456"))

	_, _, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, db, _ := testService(t)
	ctx := context.Background()
	provision(t, svc, db, "a@x.com", "T1", "old-pw-123")

	require.ErrorIs(t, svc.ChangePassword(ctx, "a@x.com", "wrong", "new-pw-456"), ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, "a@x.com", "old-pw-123", "new-pw-456"))
	_, _, err := svc.Login(ctx, "a@x.com", "new-pw-456")
	require.NoError(t, err)
}
