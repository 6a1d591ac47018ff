package database

import (
	"fwf/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultTasks = []struct {
	TaskID, Title, Description, Instruction, Icon string
}{
	{"T01", "Plant a sapling", "Plant a tree sapling in your neighbourhood.", "Photo of you next to the planted sapling.", "🌱"},
	{"T02", "Clean-up drive", "Clean a public spot near your home.", "Before/after photo of the cleaned spot.", "🧹"},
	{"T03", "Teach a child", "Spend an hour teaching a child to read or count.", "Photo of the learning session.", "📚"},
	{"T04", "Health awareness", "Share menstrual-health awareness with women in your area.", "Photo of the awareness session.", "🩺"},
	{"T05", "Feed the needy", "Serve a meal to someone in need.", "Photo of the meal being served.", "🍲"},
	{"T06", "Skill session", "Teach a livelihood skill such as tailoring or crafts.", "Photo of the skill session.", "🧵"},
	{"T07", "Water saving", "Fix a leaking tap or set up rainwater collection.", "Photo of the fix or setup.", "💧"},
	{"T08", "Elder visit", "Visit and help an elderly person.", "Photo with the elder (with consent).", "🤝"},
	{"T09", "Digital literacy", "Help a woman set up UPI or a bank app.", "Photo of the help session.", "📱"},
	{"T10", "Spread the word", "Introduce FWF to five new families.", "Photo with the families.", "📣"},
}

// SeedSocialTasks inserts the ten social tasks if the table is empty.
func SeedSocialTasks(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.SocialTask{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for i, t := range defaultTasks {
			task := models.SocialTask{
				TaskID:           t.TaskID,
				WeekNumber:       i + 1,
				Title:            t.Title,
				Description:      t.Description,
				PhotoInstruction: t.Instruction,
				Icon:             t.Icon,
				PointsReward:     decimal.NewFromInt(10),
				IsActive:         true,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		log.Info("social tasks seeded", zap.Int("count", len(defaultTasks)))
		return nil
	})
}
