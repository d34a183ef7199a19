package main

// ActionExecutor provides centralized action execution logic
// This eliminates the need for duplicate ExecuteAction implementations
// in both KeybindingManager and MousebindingManager
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction executes the given action using the InputActions interface
// This is the single source of truth for all action execution logic
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "jump_first":
		inputActions.JumpToFirst()
	case "jump_last":
		inputActions.JumpToLast()
	case "toggle_playback":
		inputActions.TogglePlayback()
	case "toggle_presentation":
		inputActions.TogglePresentation()
	case "toggle_random_presentation":
		inputActions.ToggleRandomPresentation()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "cycle_fit_mode":
		inputActions.CycleFitMode()
	case "toggle_antialias":
		inputActions.ToggleAntialias()
	case "refresh_directory":
		inputActions.RefreshDirectory()
	default:
		return false
	}

	return true
}

// globalActionExecutor is the global instance of ActionExecutor used throughout the application
var globalActionExecutor = NewActionExecutor()
