package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nudge/internal/store"
)

var categoryColors = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#EC4899", "#14B8A6", "#F97316", "#6B7280",
}

type categoriesModel struct {
	store  *store.Store
	width  int
	height int

	categories   []store.Category
	cursor       int
	showArchived bool

	formActive bool
	form       *huh.Form
	formType   string // "category", "edit_category"

	// Form field pointers (survive value copies)
	formName  *string
	formColor *string

	editingID int64
}

func newCategoriesModel(st *store.Store) categoriesModel {
	name, color := "", categoryColors[0]
	return categoriesModel{
		store:     st,
		formName:  &name,
		formColor: &color,
	}
}

func (c *categoriesModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type categoriesDataMsg struct {
	categories []store.Category
}

func (c categoriesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		categories, _ := c.store.ListCategories(!c.showArchived)
		return categoriesDataMsg{categories: categories}
	}
}

func (c categoriesModel) update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case categoriesDataMsg:
		c.categories = msg.categories
		if c.cursor >= len(c.categories) {
			c.cursor = max(0, len(c.categories)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.categories)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.New):
			return c.showNewForm()
		case key.Matches(msg, keys.Edit):
			if len(c.categories) > 0 {
				return c.showEditForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(c.categories) > 0 {
				cat := c.categories[c.cursor]
				c.store.ArchiveCategory(cat.ID)
				return c, c.refresh()
			}
		}
	}
	return c, nil
}

func colorOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(categoryColors))
	for i, col := range categoryColors {
		opts[i] = huh.NewOption(fmt.Sprintf("● %s", col), col)
	}
	return opts
}

func (c categoriesModel) showNewForm() (categoriesModel, tea.Cmd) {
	*c.formName = ""
	*c.formColor = categoryColors[0]
	c.formType = "category"

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category Name").Value(c.formName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(c.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c categoriesModel) showEditForm() (categoriesModel, tea.Cmd) {
	cat := c.categories[c.cursor]
	*c.formName = cat.Name
	*c.formColor = cat.Color
	c.formType = "edit_category"
	c.editingID = cat.ID

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category Name").Value(c.formName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(c.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c categoriesModel) updateForm(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		switch c.formType {
		case "category":
			if *c.formName != "" {
				c.store.CreateCategory(*c.formName, *c.formColor)
			}
		case "edit_category":
			if *c.formName != "" {
				cat := c.categories[c.cursor]
				c.store.UpdateCategory(c.editingID, *c.formName, *c.formColor, cat.SortOrder)
			}
		}
		return c, c.refresh()
	}

	return c, cmd
}

func (c categoriesModel) view() string {
	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Category")
		if c.formType == "edit_category" {
			title = titleStyle.Render("Edit Category")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View())
		return panelStyle.Width(c.width - 4).Render(content)
	}

	w := c.width - 4
	title := titleStyle.Render("Categories")

	if len(c.categories) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No categories. Press n to create one; prompts are skipped until one exists."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, cat := range c.categories {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s", cursor, colorDot, cat.Name)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
