package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/emilythestrangee/votables/backend/internal/database"
	"github.com/emilythestrangee/votables/backend/internal/models"
)

var dbSeq atomic.Int64

// DB returns a migrated in-memory SQLite database private to the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, username string) *models.User {
	tb.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedUsers(tb testing.TB, ctx context.Context, db *gorm.DB, n int) []*models.User {
	tb.Helper()
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, SeedUser(tb, ctx, db, fmt.Sprintf("user%d", i)))
	}
	return users
}

func SeedVotable(tb testing.TB, ctx context.Context, db *gorm.DB, creatorID int, title string) *models.Votable {
	tb.Helper()
	v := &models.Votable{
		CreatorID:   creatorID,
		Title:       title,
		Text:        title + " text",
		VotableType: models.VotableQuestion,
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed votable: %v", err)
	}
	return v
}

func SeedVote(tb testing.TB, ctx context.Context, db *gorm.DB, userID, votableID int, value models.VoteType) *models.Vote {
	tb.Helper()
	v := &models.Vote{UserID: userID, VotableID: votableID, Value: value}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vote: %v", err)
	}
	return v
}
