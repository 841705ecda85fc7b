// Package pipeline содержит общие примитивы накопления для стадий обработки.
package pipeline

// Fold применяет step слева направо и возвращает итоговое состояние
func Fold[S, T any](init S, items []T, step func(S, T) S) S {
	state := init
	for _, item := range items {
		state = step(state, item)
	}
	return state
}
