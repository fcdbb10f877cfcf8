package searcher

import "xoxo/game"

// MDP is a Markov decision process seen by a single agent. Act samples a successor state and
// the reward of the transition.
type MDP[S comparable, A comparable] interface {
	Act(s S, a A) (S, float64)
	IsTerminal(s S) bool
	AllowedActions(s S) []A
	// Discount weighs the return of the successor state.
	Discount() float64
	// Hash identifies a state in the Q-map; equal positions must hash alike.
	Hash(s S) game.StateHash
}

// Codec converts states and actions to and from the persisted Q-map format.
type Codec[S any, A any] interface {
	AppendState(buf []byte, s S) ([]byte, error)
	DecodeState(data []byte) (S, error)
	CompareStates(a, b S) int
	ActionKey(a A) uint64
	DecodeAction(key uint64) (A, error)
	Hash(s S) game.StateHash
}

// BoardMDP views a two-player board game as an MDP. The mover earns 1 when its move wins the
// game, and DiscountFactor turns that into a loss for the player one ply up.
type BoardMDP[B game.Board[B, C], C game.Coordinate] struct{}

func (BoardMDP[B, C]) Act(b B, c C) (B, float64) {
	mover := b.CurrentPlayer()
	next := b.Play(c, mover)
	if next.Status() == game.Won(mover) {
		return next, 1
	}
	return next, 0
}

func (BoardMDP[B, C]) IsTerminal(b B) bool {
	return b.IsOver()
}

func (BoardMDP[B, C]) AllowedActions(b B) []C {
	return b.ValidMoves()
}

func (BoardMDP[B, C]) Discount() float64 {
	return DiscountFactor
}

func (BoardMDP[B, C]) Hash(b B) game.StateHash {
	return b.Hash()
}

func (BoardMDP[B, C]) AppendState(buf []byte, b B) ([]byte, error) {
	return b.AppendBinary(buf)
}

func (BoardMDP[B, C]) DecodeState(data []byte) (B, error) {
	var zero B
	return zero.Decode(data)
}

func (BoardMDP[B, C]) CompareStates(a, b B) int {
	return a.Compare(b)
}

func (BoardMDP[B, C]) ActionKey(c C) uint64 {
	return uint64(c)
}

func (BoardMDP[B, C]) DecodeAction(key uint64) (C, error) {
	return C(key), nil
}
