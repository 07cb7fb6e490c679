package seed

import (
	"log"

	"Conduit/models"

	"gorm.io/gorm"
)

var users = []models.User{
	{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password",
		Bio:      "Writes about training dragons.",
	},
	{
		Username: "jake",
		Email:    "jake@example.com",
		Password: "password",
		Bio:      "I work at statefarm",
	},
}

var articles = []models.Article{
	{
		Title:       "How to train your dragon",
		Description: "Ever wonder how?",
		Body:        "It takes a Jacobian",
	},
	{
		Title:       "Thoughts on Go",
		Description: "Notes from a year of writing services",
		Body:        "Explicit errors beat hidden control flow.",
	},
}

var tagNames = [][]string{
	{"dragons", "training"},
	{"golang", "opinion"},
}

// Load resets the schema and inserts a pair of users, each with one tagged
// article. Development only.
func Load(db *gorm.DB) {
	err := db.Migrator().DropTable(
		&models.Favorite{}, &models.Comment{}, "article_tags", &models.Tag{},
		&models.Article{}, &models.Follow{}, &models.ResetPassword{},
		&models.Invite{}, &models.User{},
	)
	if err != nil {
		log.Fatalf("cannot drop tables: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Follow{}, &models.Article{}, &models.Tag{},
		&models.Favorite{}, &models.Comment{}, &models.ResetPassword{},
		&models.Invite{},
	)
	if err != nil {
		log.Fatalf("cannot migrate tables: %v", err)
	}

	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			log.Fatalf("cannot seed users table: %v", err)
		}

		tags, err := models.FindOrCreateTags(db, tagNames[i])
		if err != nil {
			log.Fatalf("cannot seed tags table: %v", err)
		}

		articles[i].AuthorID = users[i].ID
		articles[i].Tags = tags
		if _, err := articles[i].SaveArticle(db); err != nil {
			log.Fatalf("cannot seed articles table: %v", err)
		}
	}
}
