package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formflow/internal/client"
	"formflow/internal/config"
	"formflow/internal/model"
	"formflow/internal/navigate"
	"formflow/internal/session"
	"formflow/internal/snapshot"
	"formflow/internal/validate"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if cfg.FormID == "" {
		log.Fatal("FORM_ID not set")
	}

	ctx := context.Background()

	store, cleanup, err := openSnapshotStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("snapshot store: ", err)
	}
	defer cleanup()

	backend := client.New(cfg.APIBaseURL, cfg.HTTPTimeout, log)
	snapshots := snapshot.NewManager(store, log)

	ctrl, err := session.Start(ctx, backend, snapshots, cfg.FormID, log)
	if err != nil {
		log.Fatal("failed to load form, please retry: ", err)
	}

	run(ctx, ctrl)
}

func openSnapshotStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (snapshot.Store, func(), error) {
	switch cfg.SnapshotBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Info("using redis snapshot store")
		return snapshot.NewRedisStore(rdb), func() { rdb.Close() }, nil
	case "mongo":
		mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mc.Ping(pingCtx, nil); err != nil {
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		log.Info("using mongo snapshot store")
		db := mc.Database("formflow")
		return snapshot.NewMongoStore(db), func() { mc.Disconnect(ctx) }, nil
	default:
		return snapshot.NewMemoryStore(), func() {}, nil
	}
}

// run walks the session on stdin with plain prompts. Presentation stays
// minimal here; the engine carries all the behavior.
func run(ctx context.Context, ctrl *session.Controller) {
	in := bufio.NewScanner(os.Stdin)
	form := ctrl.Form()

	fmt.Println(form.Title)
	if form.Description != "" {
		fmt.Println(form.Description)
	}
	if ctrl.Restored() {
		answer := prompt(in, "Your previous progress has been restored. Press Enter to continue or type 'fresh' to start over: ")
		if answer == "fresh" {
			ctrl.StartFresh(ctx)
		}
	}

	for {
		pos := ctrl.Position()
		switch pos.Stage {
		case navigate.StagePersonalInfo:
			personalInfo(ctx, ctrl, in)
		case navigate.StageSection:
			section(ctx, ctrl, in, pos.Section)
		case navigate.StageSubmitted:
			fmt.Println("Thank you, your response has been recorded.")
			if msg := ctrl.ClosingMessage(); msg != "" {
				fmt.Println(msg)
			}
			return
		}
	}
}

func personalInfo(ctx context.Context, ctrl *session.Controller, in *bufio.Scanner) {
	form := ctrl.Form()

	if form.WelcomeMessage != "" {
		fmt.Println(form.WelcomeMessage)
	}
	if form.Settings.NameRequired() {
		ctrl.SetName(ctx, prompt(in, "Name: "))
	}
	if form.Settings.EmailRequired() {
		ctrl.SetEmail(ctx, prompt(in, "Email: "))
	}
	role := prompt(in, "Role (staff/board/executive/other): ")
	ctrl.SetRole(ctx, role)

	if err := ctrl.NextSection(ctx); err != nil {
		if errors.Is(err, navigate.ErrAlreadySubmitted) {
			fmt.Println("Our records show you have already submitted a response for this form.")
			os.Exit(0)
		}
		fmt.Println(err.Error())
	}
}

func section(ctx context.Context, ctrl *session.Controller, in *bufio.Scanner, idx int) {
	form := ctrl.Form()
	sec := form.Sections[idx]

	fmt.Printf("\n[%d/%d] %s\n", idx+1, len(form.Sections), sec.Title)
	for i := range sec.Questions {
		ask(ctx, ctrl, in, &sec.Questions[i])
	}

	last := idx == len(form.Sections)-1
	if last {
		if err := ctrl.Submit(ctx); err != nil {
			report(err)
		}
		return
	}
	if err := ctrl.NextSection(ctx); err != nil {
		report(err)
	}
}

func ask(ctx context.Context, ctrl *session.Controller, in *bufio.Scanner, q *model.Question) {
	marker := ""
	if q.Required() {
		marker = " *"
	}
	fmt.Printf("%s%s\n", q.Title, marker)

	var err error
	switch q.Type.Normalize() {
	case model.QuestionLikert:
		if v, ok := readInt(in, "1 (strongly disagree) .. 5 (strongly agree): "); ok {
			err = ctrl.SetLikert(ctx, q.ID, v)
		}
	case model.QuestionText, model.QuestionTextarea:
		if v := prompt(in, "> "); v != "" {
			err = ctrl.SetText(ctx, q.ID, v)
		}
	case model.QuestionMultipleChoice, model.QuestionDropdown:
		fmt.Println(strings.Join(q.Features.Options, " | "))
		if v := prompt(in, "> "); v != "" {
			err = ctrl.SetSelection(ctx, q.ID, v)
		}
	case model.QuestionYesNo:
		if v := prompt(in, "yes/no: "); v != "" {
			err = ctrl.SetSelection(ctx, q.ID, v)
		}
	case model.QuestionCheckbox:
		fmt.Println(strings.Join(q.Features.Options, " | "))
		if v := prompt(in, "comma-separated: "); v != "" {
			err = ctrl.SetSelections(ctx, q.ID, splitChoices(v))
		}
	case model.QuestionRating:
		min, max := q.RatingBounds()
		if v, ok := readInt(in, fmt.Sprintf("%d..%d: ", min, max)); ok {
			err = ctrl.SetNumber(ctx, q.ID, float64(v))
		}
	case model.QuestionNumber:
		if v := prompt(in, "number: "); v != "" {
			if f, perr := strconv.ParseFloat(v, 64); perr == nil {
				err = ctrl.SetNumber(ctx, q.ID, f)
			}
		}
	case model.QuestionDateTime:
		if v := prompt(in, "ISO-8601 datetime: "); v != "" {
			err = ctrl.SetDateTime(ctx, q.ID, v)
		}
	}
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	if q.AllowComment() {
		if comment := prompt(in, "Comments (optional): "); comment != "" {
			if err := ctrl.SetComment(ctx, q.ID, comment); err != nil {
				fmt.Println(err.Error())
			}
		}
	}
}

func report(err error) {
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(verr.Message)
		return
	}
	fmt.Println(err.Error())
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(in.Text())
}

func readInt(in *bufio.Scanner, label string) (int, bool) {
	v := prompt(in, label)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitChoices(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
