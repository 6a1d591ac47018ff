package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fwf/internal/domain"
	"fwf/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint, tx *gorm.DB) (*models.User, error) {
	var u models.User
	err := conn(ctx, r.db, tx).First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByMemberID(ctx context.Context, memberID string, tx *gorm.DB) (*models.User, error) {
	var u models.User
	err := conn(ctx, r.db, tx).Where("member_id = ?", memberID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIdentifier looks a user up by member ID, email or mobile.
func (r *UserRepository) GetByIdentifier(ctx context.Context, ident string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("member_id = ? OR email = ? OR mobile = ?", strings.ToUpper(ident), strings.ToLower(ident), ident).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string, tx *gorm.DB) (*models.User, error) {
	var u models.User
	err := conn(ctx, r.db, tx).Where("referral_code = ?", strings.ToUpper(code)).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var memberSeq = regexp.MustCompile(`(\d{6})$`)

// NextMemberID returns the next "<prefix>-NNNNNN" member ID after the most
// recently created member. Two concurrent callers can get the same value; the
// unique index rejects the loser, which retries.
func (r *UserRepository) NextMemberID(ctx context.Context, prefix string, tx *gorm.DB) (string, error) {
	var last models.User
	err := conn(ctx, r.db, tx).Unscoped().
		Where("role = ?", domain.RoleMember).
		Order("id DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	n := 0
	if m := memberSeq.FindStringSubmatch(last.MemberID); m != nil {
		n, _ = strconv.Atoi(m[1])
	}
	return fmt.Sprintf("%s-%06d", prefix, n+1), nil
}

func (r *UserRepository) SetReferralCode(ctx context.Context, id uint, code string, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.User{}).Where("id = ?", id).Update("referral_code", code).Error
}

func (r *UserRepository) SetReferredBy(ctx context.Context, id, referrerID uint, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.User{}).Where("id = ?", id).Update("referred_by", referrerID).Error
}

func (r *UserRepository) SetMembershipActive(ctx context.Context, id uint, active bool, tx *gorm.DB) error {
	return conn(ctx, r.db, tx).Model(&models.User{}).Where("id = ?", id).Update("membership_active", active).Error
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *UserRepository) MarkFirstLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("first_login_done", true).Error
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, id uint, token string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("fcm_token", token).Error
}

// UpdateProfile writes the editable profile columns only; wallet columns are
// never written from a loaded struct.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, name, bio, avatarURL string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "bio": bio, "avatar_url": avatarURL}).Error
}

// List returns members matching search (member ID, name, email or mobile).
func (r *UserRepository) List(ctx context.Context, search string, p Page) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", domain.RoleMember)
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("member_id LIKE ? OR name LIKE ? OR email LIKE ? OR mobile LIKE ?", like, like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := q.Order("created_at DESC").Limit(p.limit()).Offset(p.offset()).Find(&users).Error
	return users, total, err
}

// DeleteCascade removes a member and every row that belongs to them.
// Donations are kept and unlinked.
func (r *UserRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model interface{}
			where string
		}{
			{&models.PointsLedger{}, "user_id = ?"},
			{&models.Referral{}, "referrer_id = ? OR referred_user_id = ?"},
			{&models.QuizTicket{}, "seller_id = ?"},
			{&models.QuizParticipation{}, "user_id = ?"},
			{&models.TaskCompletion{}, "user_id = ?"},
			{&models.SocialPost{}, "user_id = ?"},
			{&models.MembershipFee{}, "user_id = ?"},
			{&models.Notification{}, "user_id = ?"},
		}
		for _, s := range steps {
			args := []interface{}{id}
			if strings.Count(s.where, "?") == 2 {
				args = append(args, id)
			}
			if err := tx.Where(s.where, args...).Delete(s.model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Donation{}).Where("member_id = ?", id).Update("member_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("referred_by = ?", id).Update("referred_by", nil).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
