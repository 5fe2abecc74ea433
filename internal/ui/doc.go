// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI lays out three panels side by side, cycled with tab:
//  1. [ParticipantsPanel] : Roster with add, token search, delete and delete-all (with confirmation)
//  2. [RafflePanel] : Prize input and a five-slot reel animated by the draw engine
//  3. [WinnersPanel] : Winners grouped by prize, latest first, with a prize filter and re-entry
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Draw events flow through the channel returned by the engine; a waiting command turns each event into a message so
// the reveal never blocks the UI loop.
//
// Keyboard bindings are contextual per panel and shown via charmbracelet/bubbles/help.
package ui
