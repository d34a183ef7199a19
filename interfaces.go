package main

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()

	// Navigation
	NavigateNext()
	NavigatePrevious()
	JumpToFirst()
	JumpToLast()
	RefreshDirectory()

	// Playback
	TogglePlayback()
	TogglePresentation()
	ToggleRandomPresentation()

	// Display
	ToggleFullscreen()
	CycleFitMode()
	ToggleAntialias()
}
