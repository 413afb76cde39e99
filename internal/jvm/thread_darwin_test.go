//go:build darwin

package jvm

const runDetaches = true
