package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"storynest/pkg/config"
	"storynest/pkg/database"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/s3"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	name     string
	password string
	userType models.UserType
}

type seedContent struct {
	title string
	kind  models.ContentType
	url   string
	body  string
}

var testUsers = []seedUser{
	{"admin@storynest.local", "Ada Admin", "password123", models.UserTypeAdmin},
	{"teacher@storynest.local", "Tom Teacher", "password123", models.UserTypeTeacher},
	{"child@storynest.local", "Kim Kid", "password123", models.UserTypeChild},
}

var testContent = []seedContent{
	{
		title: "Noah's Ark",
		kind:  models.ContentTypeStory,
		body: "Noah built a great ark and the animals came two by two.\n" +
			"It rained for forty days and forty nights.\n" +
			"When the water went down, a dove came back with an olive leaf, and a rainbow filled the sky.\n",
	},
	{
		title: "David and Goliath",
		kind:  models.ContentTypeStory,
		body: "A young shepherd named David stood before the giant Goliath.\n" +
			"With one stone from his sling, he won the day.\n",
	},
	{
		title: "Counting Animals Song",
		kind:  models.ContentTypeVideo,
		url:   "https://videos.storynest.local/counting-animals.mp4",
	},
	{
		title: "Ark Animals Quiz",
		kind:  models.ContentTypeQuiz,
		url:   "https://quizzes.storynest.local/ark-animals.json",
	},
}

func main() {
	var withUploads bool
	flag.BoolVar(&withUploads, "uploads", true, "Upload story texts to S3 instead of using placeholder URLs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.New(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}
	if cfg.DBDriver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			log.Error("Failed to migrate sqlite database: %v", err)
			panic(err)
		}
	}

	var s3Client *s3.Client
	if withUploads {
		if s3Client, err = s3.NewClient(cfg); err != nil {
			log.Warn("Failed to create S3 client, using placeholder URLs: %v", err)
			s3Client = nil
		}
	}

	if err := seedDatabase(context.Background(), db, s3Client, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(ctx context.Context, db *gorm.DB, s3Client *s3.Client, log *logger.Logger) error {
	profiles := make(map[models.UserType]string, len(testUsers))
	for _, u := range testUsers {
		id, err := seedIdentity(ctx, db, u, log)
		if err != nil {
			return err
		}
		profiles[u.userType] = id
	}

	teacherID := profiles[models.UserTypeTeacher]
	contentIDs := make([]string, 0, len(testContent))
	for _, c := range testContent {
		id, err := seedContentItem(ctx, db, s3Client, c, teacherID, log)
		if err != nil {
			log.Error("Failed to create content %q: %v", c.title, err)
			continue
		}
		contentIDs = append(contentIDs, id)
	}

	childID := profiles[models.UserTypeChild]
	if len(contentIDs) > 0 {
		if err := seedActivity(ctx, db, childID, profiles[models.UserTypeAdmin], contentIDs[0], log); err != nil {
			return err
		}
	}

	for _, id := range profiles {
		welcome := &models.Notification{
			UserID:  id,
			Title:   "Welcome to StoryNest",
			Message: "Start with Noah's Ark and tell us what you think.",
			Type:    models.NotificationSuccess,
		}
		var existing int64
		db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND title = ?", id, welcome.Title).Count(&existing)
		if existing > 0 {
			continue
		}
		if err := db.WithContext(ctx).Create(welcome).Error; err != nil {
			log.Error("Failed to create welcome notification for %s: %v", id, err)
		}
	}

	log.Info("Created test notifications")
	return nil
}

func seedIdentity(ctx context.Context, db *gorm.DB, u seedUser, log *logger.Logger) (string, error) {
	var existing models.Identity
	err := db.WithContext(ctx).Where("email = ?", u.email).First(&existing).Error
	if err == nil {
		log.Info("User %s already exists, skipping", u.email)
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up %s: %w", u.email, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	identity := &models.Identity{
		Email:            u.email,
		PasswordHash:     string(hashedPassword),
		EmailConfirmedAt: &now,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(identity).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{
			ID:       identity.ID,
			Name:     u.name,
			Email:    u.email,
			UserType: u.userType,
		}).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to create user %s: %w", u.email, err)
	}

	log.Info("Created %s user: %s (%s)", u.userType, u.name, u.email)
	return identity.ID, nil
}

func seedContentItem(ctx context.Context, db *gorm.DB, s3Client *s3.Client, c seedContent, createdBy string, log *logger.Logger) (string, error) {
	var existing models.Content
	if err := db.WithContext(ctx).Where("title = ?", c.title).First(&existing).Error; err == nil {
		log.Info("Content %q already exists, skipping", c.title)
		return existing.ID, nil
	}

	item := &models.Content{
		Title:     c.title,
		Type:      c.kind,
		URL:       c.url,
		CreatedBy: &createdBy,
	}
	if err := item.BeforeCreate(nil); err != nil {
		return "", fmt.Errorf("failed to generate content ID: %w", err)
	}

	if item.URL == "" {
		item.URL = "https://stories.storynest.local/" + slug(c.title) + ".txt"
		if s3Client != nil {
			fileKey := fmt.Sprintf("content/%s/%s.txt", c.kind, item.ID)
			log.Info("Uploading story to S3: %s", fileKey)
			url, err := s3Client.Upload(ctx, fileKey, strings.NewReader(c.body), "text/plain; charset=utf-8")
			if err != nil {
				log.Warn("Failed to upload %q, keeping placeholder URL: %v", c.title, err)
			} else {
				item.URL = url
			}
		}
	}

	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return "", err
	}
	log.Info("Created %s: %s", item.Type, item.Title)
	return item.ID, nil
}

// seedActivity gives the child a favorite and a reviewed rating so every
// screen has something to show.
func seedActivity(ctx context.Context, db *gorm.DB, childID, adminID, contentID string, log *logger.Logger) error {
	var count int64
	db.WithContext(ctx).Model(&models.Feedback{}).Where("user_id = ? AND content_id = ?", childID, contentID).Count(&count)
	if count > 0 {
		return nil
	}

	comment := "I loved the animals!"
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Favorite{UserID: childID, ContentID: contentID}).Error; err != nil {
			return fmt.Errorf("failed to create favorite: %w", err)
		}
		feedback := &models.Feedback{UserID: childID, ContentID: contentID, Rating: 5, Comment: &comment}
		if err := tx.Create(feedback).Error; err != nil {
			return fmt.Errorf("failed to create feedback: %w", err)
		}
		if err := tx.Create(&models.FeedbackResponse{
			FeedbackID: feedback.ID,
			AdminID:    adminID,
			Response:   "Thank you! More animal stories are coming soon.",
		}).Error; err != nil {
			return fmt.Errorf("failed to create feedback response: %w", err)
		}
		log.Info("Created favorite and feedback for content %s", contentID)
		return nil
	})
}

func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		}
	}
	return b.String()
}
