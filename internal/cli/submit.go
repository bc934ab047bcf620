package cli

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/client"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/form"
	"github.com/parisxmas/OxiDB/OxiAnketa/internal/models"
)

func newSubmitCommand() *cobra.Command {
	var (
		answersPath string
		photoPath   string
		baseURL     string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Fill the questionnaire from a YAML answers file and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := loadAnswers(answersPath)
			if err != nil {
				return err
			}
			if photoPath != "" {
				state.SetPhoto(&form.Photo{Path: photoPath, ContentType: mime.TypeByExtension(filepath.Ext(photoPath))})
			}

			sub := client.NewSubmitter(client.New(baseURL, nil), zap.NewNop())
			res, err := sub.Submit(cmd.Context(), state)
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				ids := make([]string, 0, len(ve.Fields))
				for id := range ve.Fields {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					cmd.PrintErrf("%s: %s\n", id, ve.Fields[id])
				}
				return errors.New("questionnaire is incomplete")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application submitted: %s\n", res.ApplicationID)
			return nil
		},
	}
	cmd.Flags().StringVar(&answersPath, "answers", "", "YAML file mapping field ids to answers")
	cmd.Flags().StringVar(&photoPath, "photo", "", "photo to attach (jpg, png or gif, up to 5MB)")
	cmd.Flags().StringVar(&baseURL, "url", client.DefaultBaseURL, "intake server base URL")
	cmd.MarkFlagRequired("answers")
	return cmd
}

// loadAnswers reads a YAML mapping of field id to answer into a fresh form state.
// skills takes a list; booleans become Да/Нет.
func loadAnswers(path string) (*form.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var answers map[string]any
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}

	state := form.NewState()
	for id, v := range answers {
		if id == form.FieldSkills {
			skills, err := form.NormalizeSkills(v)
			if err != nil {
				return nil, fmt.Errorf("answers: %w", err)
			}
			for _, s := range skills {
				if err := state.ToggleSkill(s, true); err != nil {
					return nil, err
				}
			}
			continue
		}
		s, err := answerString(v)
		if err != nil {
			return nil, fmt.Errorf("answers: %s: %w", id, err)
		}
		if err := state.SetField(id, s); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func answerString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		if t {
			return "Да", nil
		}
		return "Нет", nil
	case time.Time:
		return t.Format(form.DateLayout), nil
	}
	return "", fmt.Errorf("unsupported answer type %T", v)
}
