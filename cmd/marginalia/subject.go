// ABOUTME: Subject commands grouping content units into ordered courses.
// ABOUTME: Covers add, list, order, assign, and rm.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harper/marginalia/internal/db"
	"github.com/harper/marginalia/internal/models"
	"github.com/harper/marginalia/internal/ui"
)

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "Manage subjects that group content into lessons",
}

var subjectAddCmd = &cobra.Command{
	Use:   "add <slug>",
	Short: "Add a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		title, _ := cmd.Flags().GetString("title")
		category, _ := cmd.Flags().GetString("category")
		description, _ := cmd.Flags().GetString("description")

		if title == "" {
			title = slug
		}
		s := models.NewSubject(slug, title, models.Category(category))
		s.Description = description

		if err := db.CreateSubject(cmd.Context(), appState.DB, s); err != nil {
			return fmt.Errorf("failed to create subject: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created subject %s", s.Slug)))
		return nil
	},
}

var subjectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects with their lesson counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		subjects, err := db.ListSubjects(cmd.Context(), appState.DB, models.Category(category))
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		if len(subjects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No subjects found.")
			return nil
		}

		for _, s := range subjects {
			lessons, err := db.ListContents(cmd.Context(), appState.DB, db.ContentFilter{SubjectID: s.ID})
			if err != nil {
				return fmt.Errorf("failed to list lessons of %s: %w", s.Slug, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatSubjectListItem(ui.SubjectSummary{Subject: s, Lessons: len(lessons)}))
		}
		return nil
	},
}

var subjectOrderCmd = &cobra.Command{
	Use:   "order <slug> <position>",
	Short: "Set a subject's display position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		if err := db.SetSubjectOrder(cmd.Context(), appState.DB, args[0], pos); err != nil {
			return fmt.Errorf("failed to order subject: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Moved %s to position %d", args[0], pos)))
		return nil
	},
}

var subjectAssignCmd = &cobra.Command{
	Use:   "assign <content-slug> [subject-slug]",
	Short: "Put a content unit under a subject",
	Long:  `Make a content unit a lesson of a subject in the same category. Without a subject, the content is detached.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := ""
		if len(args) == 2 {
			subject = args[1]
		}
		if err := db.AssignSubject(cmd.Context(), appState.DB, args[0], subject); err != nil {
			return fmt.Errorf("failed to assign subject: %w", err)
		}
		if subject == "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Detached %s from its subject", args[0])))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Assigned %s to %s", args[0], subject)))
		return nil
	},
}

var subjectRmCmd = &cobra.Command{
	Use:   "rm <slug>",
	Short: "Remove a subject",
	Long:  `Delete a subject. Its lessons are kept and detached.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.DeleteSubject(cmd.Context(), appState.DB, args[0]); err != nil {
			return fmt.Errorf("failed to delete subject: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Deleted subject %s", args[0])))
		return nil
	},
}

func init() {
	subjectAddCmd.Flags().StringP("title", "t", "", "subject title (defaults to the slug)")
	subjectAddCmd.Flags().StringP("category", "c", string(models.CategoryFinance), "category (finance|ai-ml|mathematics)")
	subjectAddCmd.Flags().String("description", "", "short description")

	subjectListCmd.Flags().StringP("category", "c", "", "filter by category")

	subjectCmd.AddCommand(subjectAddCmd, subjectListCmd, subjectOrderCmd, subjectAssignCmd, subjectRmCmd)
	rootCmd.AddCommand(subjectCmd)
}
