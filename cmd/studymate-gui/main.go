package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/studymate-app/studymate/internal/api"
	"github.com/studymate-app/studymate/internal/auth"
	"github.com/studymate-app/studymate/internal/config"
	"github.com/studymate-app/studymate/internal/docs"
	"github.com/studymate-app/studymate/internal/session"
	"github.com/studymate-app/studymate/internal/viewer"
	"github.com/studymate-app/studymate/pkg/logger"
	"github.com/studymate-app/studymate/pkg/models"
	"github.com/studymate-app/studymate/pkg/updater"
	"github.com/studymate-app/studymate/pkg/utils"
	"github.com/studymate-app/studymate/pkg/version"
)

type StudyMateGUI struct {
	// Core components
	window        fyne.Window
	log           *logger.Logger
	logFileName   string
	client        *api.Client
	sessions      *session.Manager
	library       *docs.Repository
	study         *viewer.Viewer
	signIn        *auth.GoogleSignIn
	updateChecker *updater.Checker
	mutex         sync.Mutex

	// Upload transient state
	selectedFile string
	uploadPhase  docs.UploadPhase
}

func NewStudyMateGUI() *StudyMateGUI {
	log, logFileName, err := setupLogging()
	if err != nil {
		log = logger.New(logger.WithPrefix("[studymate-gui] "))
		fmt.Printf("Warning: Failed to set up logging: %v\n", err)
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}
	log.SetVerbose(cfg.Verbose)

	client, err := api.NewClient(cfg.APIURL, cfg.RequestTimeout(), log)
	if err != nil {
		log.Fatal("Error creating API client: %v", err)
	}

	studymateApp := app.New()
	window := studymateApp.NewWindow("StudyMate")

	gui := &StudyMateGUI{
		window:        window,
		log:           log,
		logFileName:   logFileName,
		client:        client,
		sessions:      session.NewManager(client, log),
		library:       docs.NewRepository(client, log),
		study:         viewer.New(),
		signIn:        auth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, log),
		updateChecker: updater.NewChecker(log),
	}

	// The document list follows the session: authenticated sessions load
	// it, anything else clears it. This replaces the SPA's imperative
	// re-render of the sign-in widget on every session change.
	gui.sessions.OnChange(func(s models.Session) {
		if s.Authenticated {
			go func() {
				if err := gui.library.Reload(context.Background()); err != nil {
					gui.log.Error("Failed to load documents: %v", err)
				}
				gui.render()
			}()
			return
		}
		gui.library.Reset()
		gui.study.Close()
		gui.setUploadState("", docs.PhaseIdle)
		gui.render()
	})

	return gui
}

// render is the view selector: exactly one of the four screens is shown,
// decided purely from session and viewer state.
func (gui *StudyMateGUI) render() {
	gui.mutex.Lock()
	defer gui.mutex.Unlock()

	switch {
	case !gui.sessions.Resolved():
		gui.window.SetContent(gui.makeLoadingView())
	case !gui.sessions.Current().Authenticated:
		gui.window.SetContent(gui.makeLoginView())
	case gui.study.IsOpen():
		gui.window.SetContent(gui.makeViewerView())
	default:
		gui.window.SetContent(gui.makeMainView())
	}
}

func (gui *StudyMateGUI) makeLoadingView() fyne.CanvasObject {
	progress := widget.NewProgressBarInfinite()
	return container.NewCenter(container.NewVBox(
		widget.NewLabelWithStyle("StudyMate", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		progress,
		widget.NewLabelWithStyle("Loading StudyMate...", fyne.TextAlignCenter, fyne.TextStyle{}),
	))
}

func (gui *StudyMateGUI) makeLoginView() fyne.CanvasObject {
	signInBtn := widget.NewButtonWithIcon("Sign in with Google", theme.LoginIcon(), gui.handleSignIn)
	signInBtn.Importance = widget.HighImportance

	loginCard := widget.NewCard("StudyMate", "AI-Powered Flashcard Generator",
		container.NewVBox(
			signInBtn,
			widget.NewSeparator(),
			widget.NewLabel("Auto-generate flashcards from your notes"),
			widget.NewLabel("Your documents stored in the cloud"),
			widget.NewLabel("Secure Google sign-in"),
		),
	)

	versionLabel := widget.NewLabelWithStyle(
		version.GetVersionInfo(),
		fyne.TextAlignCenter,
		fyne.TextStyle{Italic: true},
	)

	return container.NewCenter(container.NewVBox(loginCard, versionLabel))
}

func (gui *StudyMateGUI) makeMainView() fyne.CanvasObject {
	content := container.NewVBox(
		gui.makeHeader(),
		gui.makeStatsCard(),
		gui.makeUploadCard(),
		gui.makeDocumentsCard(),
	)
	return container.NewPadded(container.NewScroll(content))
}

func (gui *StudyMateGUI) makeHeader() fyne.CanvasObject {
	sess := gui.sessions.Current()

	welcome := widget.NewLabelWithStyle(
		fmt.Sprintf("Welcome, %s", sess.DisplayName()),
		fyne.TextAlignLeading,
		fyne.TextStyle{Bold: true},
	)

	logoutBtn := widget.NewButtonWithIcon("Logout", theme.LogoutIcon(), gui.handleLogout)

	return container.NewBorder(nil, widget.NewSeparator(), nil, logoutBtn, welcome)
}

func (gui *StudyMateGUI) makeStatsCard() fyne.CanvasObject {
	stats := gui.library.Stats()

	fileCount := widget.NewLabelWithStyle(
		fmt.Sprintf("%d", stats.TotalFiles), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	cardCount := widget.NewLabelWithStyle(
		fmt.Sprintf("%d", stats.TotalCards), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	return container.NewGridWithColumns(2,
		widget.NewCard("", "Documents", fileCount),
		widget.NewCard("", "Flashcards Generated", cardCount),
	)
}

func (gui *StudyMateGUI) makeUploadCard() fyne.CanvasObject {
	fileName := "Choose a file"
	if gui.selectedFile != "" {
		fileName = filepath.Base(gui.selectedFile)
	}
	fileLabel := widget.NewLabel(fileName)

	browseBtn := widget.NewButton("Browse Files", gui.handleBrowse)
	hint := widget.NewLabel("Supported: TXT, PDF, DOC, DOCX (Max 16MB)")

	rows := container.NewVBox(
		container.NewBorder(nil, nil, nil, browseBtn, fileLabel),
		hint,
	)

	if gui.selectedFile != "" {
		uploadBtn := widget.NewButtonWithIcon("Upload & Generate Flashcards", theme.UploadIcon(), gui.handleUpload)
		uploadBtn.Importance = widget.HighImportance
		cancelBtn := widget.NewButton("Cancel", gui.handleCancelSelection)

		if gui.uploadPhase == docs.PhaseUploading {
			uploadBtn.SetText("Uploading...")
			uploadBtn.Disable()
			cancelBtn.Disable()
		}
		rows.Add(container.NewHBox(uploadBtn, cancelBtn))
	}

	if gui.uploadPhase == docs.PhaseSuccess {
		success := widget.NewLabelWithStyle(
			"Uploaded! Flashcards generated successfully.",
			fyne.TextAlignLeading,
			fyne.TextStyle{Bold: true},
		)
		rows.Add(success)
	}

	return widget.NewCard("Upload Your Notes", "Upload TXT files for best results (PDF/DOC supported)", rows)
}

func (gui *StudyMateGUI) makeDocumentsCard() fyne.CanvasObject {
	documents := gui.library.Documents()

	if len(documents) == 0 {
		return widget.NewCard("No documents yet", "Upload your first document to get started!", layout.NewSpacer())
	}

	list := container.NewVBox()
	for _, doc := range documents {
		doc := doc

		name := widget.NewLabelWithStyle(doc.Filename, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
		details := widget.NewLabel(fmt.Sprintf("%s • %d cards • %s",
			utils.FormatFileSize(doc.Size),
			doc.FlashcardCount,
			utils.FormatUploadDate(doc.UploadDate),
		))

		viewBtn := widget.NewButton("View Flashcards", func() {
			gui.handleViewFlashcards(doc)
		})
		deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
			gui.handleDelete(doc)
		})

		row := container.NewBorder(nil, widget.NewSeparator(), nil,
			container.NewHBox(viewBtn, deleteBtn),
			container.NewVBox(name, details),
		)
		list.Add(row)
	}

	return widget.NewCard("Your Saved Documents", "", list)
}

func (gui *StudyMateGUI) makeViewerView() fyne.CanvasObject {
	backBtn := widget.NewButtonWithIcon("Back to Documents", theme.NavigateBackIcon(), func() {
		gui.study.Close()
		gui.render()
	})

	title := widget.NewLabelWithStyle(gui.study.DocName(), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	position := widget.NewLabelWithStyle(
		fmt.Sprintf("Card %d of %d", gui.study.Index()+1, gui.study.Len()),
		fyne.TextAlignCenter,
		fyne.TextStyle{},
	)

	side := "Question"
	text := gui.study.Current().Question
	if gui.study.Flipped() {
		side = "Answer"
		text = gui.study.Current().Answer
	}
	cardText := widget.NewLabelWithStyle(text, fyne.TextAlignCenter, fyne.TextStyle{})
	cardText.Wrapping = fyne.TextWrapWord
	card := widget.NewCard(side, "", container.NewPadded(cardText))

	prevBtn := widget.NewButtonWithIcon("Previous", theme.NavigateBackIcon(), func() {
		gui.study.Prev()
		gui.render()
	})
	flipBtn := widget.NewButtonWithIcon("Flip Card", theme.ViewRefreshIcon(), func() {
		gui.study.Flip()
		gui.render()
	})
	flipBtn.Importance = widget.HighImportance
	nextBtn := widget.NewButtonWithIcon("Next", theme.NavigateNextIcon(), func() {
		gui.study.Next()
		gui.render()
	})

	if gui.study.Index() == 0 {
		prevBtn.Disable()
	}
	if gui.study.Index() == gui.study.Len()-1 {
		nextBtn.Disable()
	}

	controls := container.NewHBox(layout.NewSpacer(), prevBtn, flipBtn, nextBtn, layout.NewSpacer())

	content := container.NewVBox(
		container.NewBorder(nil, nil, backBtn, nil, container.NewVBox(title, position)),
		card,
		controls,
	)
	return container.NewPadded(content)
}

func (gui *StudyMateGUI) handleSignIn() {
	go func() {
		credential, err := gui.signIn.SignIn(context.Background())
		if err != nil {
			gui.showError(fmt.Errorf("sign-in failed: %v", err))
			return
		}

		if _, err := gui.sessions.Login(context.Background(), credential); err != nil {
			gui.showError(fmt.Errorf("login failed: %v", err))
			return
		}
	}()
}

func (gui *StudyMateGUI) handleLogout() {
	go func() {
		// Local state is cleared by the session listener even if the
		// server call fails.
		_ = gui.sessions.Logout(context.Background())
	}()
}

func (gui *StudyMateGUI) handleBrowse() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			gui.showError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		if !docs.IsAllowedFile(path) {
			gui.showError(docs.ErrUnsupportedFileType)
			return
		}

		gui.setUploadState(path, docs.PhaseIdle)
		gui.render()
	}, gui.window)
	fileDialog.SetFilter(storage.NewExtensionFileFilter(docs.AllowedExtensions()))
	fileDialog.Show()
}

func (gui *StudyMateGUI) handleCancelSelection() {
	gui.setUploadState("", docs.PhaseIdle)
	gui.render()
}

func (gui *StudyMateGUI) handleUpload() {
	if gui.selectedFile == "" {
		gui.showError(fmt.Errorf("please select a file"))
		return
	}

	path := gui.selectedFile
	gui.setUploadState(path, docs.PhaseUploading)
	gui.render()

	go func() {
		result, err := gui.library.Upload(context.Background(), path)
		if err != nil {
			// The selected file stays in place so the user can retry.
			gui.setUploadState(path, docs.PhaseIdle)
			gui.render()
			gui.showError(fmt.Errorf("upload failed: %v", err))
			return
		}

		gui.log.Info("Uploaded %s with %d flashcards", result.Filename, result.FlashcardCount)
		gui.setUploadState("", docs.PhaseSuccess)
		gui.render()
	}()
}

func (gui *StudyMateGUI) handleViewFlashcards(doc models.Document) {
	go func() {
		cards, err := gui.library.Flashcards(context.Background(), doc)
		if err != nil {
			gui.showError(err)
			return
		}

		if err := gui.study.Open(cards, doc.Filename); err != nil {
			gui.showError(err)
			return
		}
		gui.render()
	}()
}

func (gui *StudyMateGUI) handleDelete(doc models.Document) {
	confirm := dialog.NewConfirm(
		"Delete Document",
		fmt.Sprintf("Delete %q?", doc.Filename),
		func(ok bool) {
			if !ok {
				return
			}
			go func() {
				if _, err := gui.library.DeleteWithConfirm(context.Background(), doc, nil); err != nil {
					gui.showError(fmt.Errorf("delete failed: %v", err))
					return
				}
				gui.render()
				dialog.ShowInformation("Deleted", fmt.Sprintf("%s was deleted.", doc.Filename), gui.window)
			}()
		},
		gui.window,
	)
	confirm.Show()
}

func (gui *StudyMateGUI) showError(err error) {
	gui.log.Error("%v", err)
	dialog.ShowError(err, gui.window)
}

func (gui *StudyMateGUI) setUploadState(path string, phase docs.UploadPhase) {
	gui.mutex.Lock()
	defer gui.mutex.Unlock()
	gui.selectedFile = path
	gui.uploadPhase = phase
}

func (gui *StudyMateGUI) setupMenu() {
	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu("Help",
			fyne.NewMenuItem("About", func() {
				dialog.ShowInformation(
					"About StudyMate",
					version.GetDetailedVersionInfo(),
					gui.window,
				)
			}),
		),
	)
	gui.window.SetMainMenu(mainMenu)
}

func (gui *StudyMateGUI) startUpdateChecker() {
	go func() {
		time.Sleep(5 * time.Second)
		gui.checkForUpdates()
	}()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			gui.checkForUpdates()
		}
	}()
}

func (gui *StudyMateGUI) checkForUpdates() {
	info, err := gui.updateChecker.CheckForUpdates()
	if err != nil {
		gui.log.Debug("Failed to check for updates: %v", err)
		return
	}

	if info != nil && info.IsAvailable {
		gui.showUpdateDialog(info)
	}
}

func (gui *StudyMateGUI) showUpdateDialog(info *updater.UpdateInfo) {
	message := fmt.Sprintf(
		"A new version of StudyMate is available!\n\n"+
			"Current version: %s\n"+
			"Latest version: %s\n\n"+
			"%s",
		info.CurrentVersion,
		info.LatestVersion,
		info.UpdateMessage,
	)

	content := container.NewVBox(
		widget.NewRichTextFromMarkdown(message),
		container.NewHBox(
			widget.NewButton("Download Update", func() {
				gui.openBrowser(info.DownloadURL)
			}),
		),
	)

	var d dialog.Dialog
	if info.ForceUpdate {
		d = dialog.NewCustom("Required Update Available", "", content, gui.window)
	} else {
		d = dialog.NewCustom("Update Available", "Later", content, gui.window)
	}

	d.Resize(fyne.NewSize(500, 300))
	d.Show()
}

func (gui *StudyMateGUI) openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("cmd", "/c", "start", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}

	if err != nil {
		gui.showError(fmt.Errorf("failed to open download page: %v", err))
	}
}

func setupLogging() (*logger.Logger, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	logsDir := filepath.Join(homeDir, "studymate-logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFileName := filepath.Join(logsDir, fmt.Sprintf("studymate_%s.log", timestamp))

	absLogPath, err := filepath.Abs(logFileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	logFile, err := os.Create(absLogPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log := logger.New(
		logger.WithPrefix("[studymate-gui] "),
		logger.WithOutput(multiWriter),
	)

	return log, absLogPath, nil
}

func (gui *StudyMateGUI) resolveSession() {
	if _, err := gui.sessions.CheckSession(context.Background()); err != nil {
		gui.log.Error("Initial session check failed: %v", err)
	}
	gui.render()
}

func (gui *StudyMateGUI) Run() {
	gui.setupMenu()
	gui.render()
	gui.window.Resize(fyne.NewSize(700, 800))
	go gui.resolveSession()
	gui.window.ShowAndRun()
}

func main() {
	gui := NewStudyMateGUI()
	gui.startUpdateChecker()
	gui.Run()
}
