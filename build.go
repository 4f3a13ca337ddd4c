//go:build ignore

// build.go - lakner-inflation build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, build, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	binary  = "lakner-inflation"
	pkgPath = "./cmd/lakner-inflation"
)

var (
	rootDir string
	distDir string

	// Release platforms as GOOS/GOARCH
	releaseTargets = []string{
		"linux/amd64",
		"linux/arm64",
		"darwin/arm64",
		"windows/amd64",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s; run build.go from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if os.Getenv("NO_COLOR") != "" {
		colorReset, colorRed, colorGreen, colorYellow, colorBlue, colorCyan = "", "", "", "", "", ""
	}

	printHeader()
	startTime := time.Now()

	var err error
	switch *target {
	case "all":
		if err = runTests(*verbose); err == nil {
			err = buildBinary(runtime.GOOS, runtime.GOARCH, *verbose)
		}
	case "build":
		err = buildBinary(runtime.GOOS, runtime.GOARCH, *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = clean(*verbose)
	case "release":
		err = buildRelease(*verbose)
	default:
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}

	duration := time.Since(startTime)
	printSuccess(fmt.Sprintf("Build completed in %s", duration.Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "     lakner-inflation - Build System      " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func outputName(goos, goarch string) string {
	name := binary
	if goos != runtime.GOOS || goarch != runtime.GOARCH {
		name = fmt.Sprintf("%s-%s-%s", binary, goos, goarch)
	}
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

func buildBinary(goos, goarch string, verbose bool) error {
	printInfo(fmt.Sprintf("Building %s for %s/%s...", binary, goos, goarch))

	if err := os.MkdirAll(distDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", distDir, err)
	}

	outputPath := filepath.Join(distDir, outputName(goos, goarch))
	args := []string{"build", "-trimpath", "-ldflags", "-s -w", "-o", outputPath, pkgPath}
	if verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	cmd.Stderr = os.Stderr
	if verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build %s/%s: %w", goos, goarch, err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.2f MB)", outputPath, sizeMB))
	}
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go tests failed: %w", err)
	}
	return nil
}

func buildRelease(verbose bool) error {
	printInfo("Building release binaries...")
	if err := clean(verbose); err != nil {
		return err
	}
	for _, target := range releaseTargets {
		goos, goarch, _ := strings.Cut(target, "/")
		if err := buildBinary(goos, goarch, verbose); err != nil {
			return err
		}
	}
	return nil
}

func clean(verbose bool) error {
	printInfo("Cleaning build artifacts...")
	if _, err := os.Stat(distDir); os.IsNotExist(err) {
		if verbose {
			printWarning(distDir + " does not exist")
		}
		return nil
	}
	if err := os.RemoveAll(distDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", distDir, err)
	}
	return nil
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all      Run tests, then build for the host platform (default)")
	fmt.Println("  build    Build for the host platform")
	fmt.Println("  test     Run all tests with the race detector")
	fmt.Println("  clean    Remove the dist directory")
	fmt.Println("  release  Build binaries for " + strings.Join(releaseTargets, ", "))
}
