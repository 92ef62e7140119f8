package vos

import "fmt"

func ExampleCopyEnv() {
	env := NewMapEnv()
	CopyEnv(env, EnvList{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleNewMapEnvFromEnvList() {
	env := NewMapEnvFromEnvList([]string{"PATH=/bin:/usr/bin", "HOME=/home/pipesh"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	home, _ := env.UserHomeDir()
	fmt.Printf("UserHomeDir(): %q\n", home)

	// Output: Environ(): ["HOME=/home/pipesh" "PATH=/bin:/usr/bin"]
	// UserHomeDir(): "/home/pipesh"
}

func ExampleMapEnv_Unsetenv() {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv("C", "D")

	fmt.Println("Before:", env.Environ())
	env.Unsetenv("A")
	fmt.Println("After:", env.Environ())

	// Output: Before: [A=B C=D]
	// After: [C=D]
}

func ExampleMapEnv_LookupEnv() {
	env := NewMapEnv()
	env.Setenv("A", "")

	val, ok := env.LookupEnv("A")
	fmt.Printf("Existing val: %q ok: %v\n", val, ok)
	val, ok = env.LookupEnv("B")
	fmt.Printf("Missing val: %q ok: %v\n", val, ok)

	// Output: Existing val: "" ok: true
	// Missing val: "" ok: false
}
