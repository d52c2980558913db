package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/studymate-app/studymate/internal/api"
	"github.com/studymate-app/studymate/internal/auth"
	"github.com/studymate-app/studymate/internal/config"
	"github.com/studymate-app/studymate/internal/docs"
	"github.com/studymate-app/studymate/internal/session"
	"github.com/studymate-app/studymate/pkg/logger"
	"github.com/studymate-app/studymate/pkg/models"
	"github.com/studymate-app/studymate/pkg/utils"
	"github.com/studymate-app/studymate/pkg/version"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	credential := flag.String("credential", "", "Google ID token to log in with (skips the browser flow)")
	list := flag.Bool("list", false, "list uploaded documents and stats")
	uploadPath := flag.String("upload", "", "upload a document and generate flashcards")
	deleteID := flag.String("delete", "", "delete the document with this id")
	cardsID := flag.String("cards", "", "print the flashcards for the document with this id")
	yes := flag.Bool("yes", false, "skip the delete confirmation prompt")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[studymate] "))
	log.SetVerbose(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}

	client, err := api.NewClient(cfg.APIURL, cfg.RequestTimeout(), log)
	if err != nil {
		log.Fatal("Error creating API client: %v", err)
	}

	ctx := context.Background()
	sessions := session.NewManager(client, log)
	library := docs.NewRepository(client, log)

	sess, err := sessions.CheckSession(ctx)
	if err != nil {
		log.Fatal("Could not reach server at %s: %v", cfg.APIURL, err)
	}

	if !sess.Authenticated {
		token := *credential
		if token == "" {
			signIn := auth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, log)
			token, err = signIn.SignIn(ctx)
			if err != nil {
				log.Fatal("Sign-in failed: %v", err)
			}
		}
		if sess, err = sessions.Login(ctx, token); err != nil {
			log.Fatal("Login failed: %v", err)
		}
	}
	log.Info("Signed in as %s", sess.DisplayName())

	switch {
	case *uploadPath != "":
		result, err := library.Upload(ctx, *uploadPath)
		if err != nil {
			log.Fatal("Upload failed: %v", err)
		}
		log.Info("Uploaded %s: %d flashcards generated", result.Filename, result.FlashcardCount)
		printDocuments(library)

	case *deleteID != "":
		doc, err := findDocument(ctx, library, *deleteID)
		if err != nil {
			log.Fatal("%v", err)
		}
		confirm := confirmPrompt
		if *yes {
			confirm = nil
		}
		deleted, err := library.DeleteWithConfirm(ctx, doc, confirm)
		if err != nil {
			log.Fatal("Delete failed: %v", err)
		}
		if !deleted {
			log.Info("Delete cancelled")
			return
		}
		log.Info("Deleted %s", doc.Filename)

	case *cardsID != "":
		doc, err := findDocument(ctx, library, *cardsID)
		if err != nil {
			log.Fatal("%v", err)
		}
		cards, err := library.Flashcards(ctx, doc)
		if err != nil {
			log.Fatal("%v", err)
		}
		fmt.Printf("%s (%d cards)\n\n", doc.Filename, len(cards))
		for i, card := range cards {
			fmt.Printf("%d. Q: %s\n   A: %s\n", i+1, card.Question, card.Answer)
		}

	case *list:
		if err := library.Reload(ctx); err != nil {
			log.Fatal("Failed to load documents: %v", err)
		}
		printDocuments(library)

	default:
		flag.Usage()
	}
}

func findDocument(ctx context.Context, library *docs.Repository, id string) (models.Document, error) {
	if err := library.Reload(ctx); err != nil {
		return models.Document{}, fmt.Errorf("failed to load documents: %w", err)
	}
	for _, doc := range library.Documents() {
		if doc.ID == id {
			return doc, nil
		}
	}
	return models.Document{}, fmt.Errorf("no document with id %s", id)
}

func printDocuments(library *docs.Repository) {
	documents := library.Documents()
	stats := library.Stats()

	if len(documents) == 0 {
		fmt.Println("No documents yet. Upload your first document to get started!")
		return
	}

	fmt.Printf("%d documents, %d flashcards total\n\n", stats.TotalFiles, stats.TotalCards)
	for _, doc := range documents {
		fmt.Printf("%s  %s  (%s, %d cards, %s)\n",
			doc.ID,
			doc.Filename,
			utils.FormatFileSize(doc.Size),
			doc.FlashcardCount,
			utils.FormatUploadDate(doc.UploadDate),
		)
	}
}

func confirmPrompt(doc models.Document) bool {
	fmt.Printf("Delete %q? [y/N]: ", doc.Filename)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
