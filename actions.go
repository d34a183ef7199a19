package main

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions with default keybindings, mouse bindings, and descriptions
var actionDefinitions = []ActionDefinition{
	{"exit", []string{"Escape", "KeyQ"}, []string{}, "Quit application"},
	{"next", []string{"Space", "KeyN", "ArrowRight"}, []string{"LeftClick", "WheelDown"}, "Next image"},
	{"previous", []string{"Backspace", "KeyP", "ArrowLeft"}, []string{"RightClick", "WheelUp"}, "Previous image"},
	{"jump_first", []string{"Home"}, []string{}, "Jump to first image"},
	{"jump_last", []string{"End"}, []string{}, "Jump to last image"},
	{"toggle_playback", []string{"KeyV"}, []string{}, "Play/pause folder playback"},
	{"toggle_presentation", []string{"KeyS"}, []string{}, "Start/stop slideshow"},
	{"toggle_random_presentation", []string{"Shift+KeyS"}, []string{}, "Start/stop random slideshow"},
	{"fullscreen", []string{"Enter", "KeyF"}, []string{"DoubleLeftClick"}, "Toggle fullscreen"},
	{"cycle_fit_mode", []string{"KeyT"}, []string{"MiddleClick"}, "Cycle fit mode (best/stretch/original)"},
	{"toggle_antialias", []string{"KeyA"}, []string{}, "Toggle antialiasing"},
	{"refresh_directory", []string{"KeyR"}, []string{}, "Re-scan the current directory"},
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = action.Keys
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = action.MouseActions
	}
	return mousebindings
}
