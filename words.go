/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "math/rand/v2"

// WordSource supplies the word each turn is played against.
type WordSource interface {
	Draw() string
}

var vocabulary = vocabularyList{
	"apple",
	"banana",
	"computer",
	"elephant",
	"giraffe",
	"kangaroo",
	"library",
	"mountain",
	"octopus",
	"penguin",
}

// vocabularyList draws uniformly from a fixed, non-empty list of words.
type vocabularyList []string

func (v vocabularyList) Draw() string {
	return v[rand.IntN(len(v))]
}
