package ui

import (
	"github.com/charmbracelet/huh"
)

// SelectFiles asks which of the conflicted files to rewrite. Every file
// starts selected.
func SelectFiles(files []string) ([]string, error) {
	selectedFiles := append([]string(nil), files...)
	var options []huh.Option[string]

	for _, file := range files {
		options = append(options, huh.NewOption(file, file).Selected(true))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Keep our side in these files:").
				Description("Unselected files are left untouched.").
				Options(options...).
				Value(&selectedFiles),
		),
	)

	err := form.Run()
	if err != nil {
		return nil, err
	}

	return selectedFiles, nil
}
