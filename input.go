package main

// InputHandler handles all keyboard and mouse input processing
type InputHandler struct {
	inputActions        InputActions
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, keybindingManager *KeybindingManager, mousebindingManager *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		keybindingManager:   keybindingManager,
		mousebindingManager: mousebindingManager,
	}
}

// HandleInput processes all input for the current frame
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	inputProcessed := false

	for _, action := range actionDefinitions {
		if h.keybindingManager.ExecuteAction(action.Name, h.inputActions) {
			inputProcessed = true
			continue
		}
		if h.mousebindingManager.ExecuteAction(action.Name, h.inputActions) {
			inputProcessed = true
		}
	}

	return inputProcessed
}
