package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/voicetimeapp/voicetime/internal/model"
)

// Category flags.
var (
	categoryFlagColor string
	categoryFlagIcon  string
	categoryFlagName  string
)

// categoryCmd manages activity categories.
var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage activity categories",
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	RunE:    runCategoryList,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add ID NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoryAdd,
}

var categoryEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryEdit,
}

var categoryDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a category (its entries become uncategorized)",
	Args:    cobra.ExactArgs(1),
	RunE:    runCategoryDelete,
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryFlagColor, "color", "", "Display color (hex)")
	categoryAddCmd.Flags().StringVar(&categoryFlagIcon, "icon", "", "Display glyph")
	categoryEditCmd.Flags().StringVar(&categoryFlagName, "name", "", "New name")
	categoryEditCmd.Flags().StringVar(&categoryFlagColor, "color", "", "New color")
	categoryEditCmd.Flags().StringVar(&categoryFlagIcon, "icon", "", "New glyph")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryEditCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	categories, err := ctx.CategoryRepo.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(categories)
	}

	for _, c := range categories {
		icon := c.Icon
		if icon == "" {
			icon = " "
		}
		ctx.Formatter.Printf("%s %-12s %s\n", icon, c.ID, c.Name)
	}
	return nil
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	category := model.NewCategory(args[0], args[1], categoryFlagColor, categoryFlagIcon)
	if err := ctx.CategoryRepo.Create(category); err != nil {
		return err
	}
	ctx.Formatter.Success("Category added: " + category.ID)
	return nil
}

func runCategoryEdit(cmd *cobra.Command, args []string) error {
	category, err := ctx.CategoryRepo.Get(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("name") {
		category.Name = categoryFlagName
	}
	if cmd.Flags().Changed("color") {
		category.Color = categoryFlagColor
	}
	if cmd.Flags().Changed("icon") {
		category.Icon = categoryFlagIcon
	}
	category.UpdatedAt = time.Now()

	if err := ctx.CategoryRepo.Update(category); err != nil {
		return err
	}
	ctx.Formatter.Success("Category updated.")
	return nil
}

func runCategoryDelete(cmd *cobra.Command, args []string) error {
	if err := ctx.CategoryRepo.Delete(args[0], ctx.EntryRepo); err != nil {
		return err
	}
	ctx.Formatter.Success("Category deleted; its entries are now uncategorized.")
	return nil
}
