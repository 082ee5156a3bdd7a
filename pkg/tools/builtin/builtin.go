// Package builtin holds the tools the chat server registers by default.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/papercomputeco/uistream/pkg/tools"
)

// DefaultWeatherLatency is the simulated lookup latency of getWeather.
const DefaultWeatherLatency = time.Second

// WeatherInput is the argument object of getWeather.
type WeatherInput struct {
	City string `json:"city" jsonschema:"the city to get the weather for"`
}

// WeatherReport is the result of getWeather.
type WeatherReport struct {
	City        string `json:"city"`
	Temperature int    `json:"temperature"`
	Unit        string `json:"unit"`
	Conditions  string `json:"conditions"`
	Humidity    int    `json:"humidity"`
}

func (w WeatherReport) Summary() string {
	return fmt.Sprintf("%s: %d°%s, %s", w.City, w.Temperature, w.Unit, w.Conditions)
}

var conditions = []string{"sunny", "partly cloudy", "cloudy", "light rain", "windy"}

// Weather returns the getWeather tool. Reports are derived from the city name
// so repeated calls agree.
func Weather(latency time.Duration) (tools.Tool, error) {
	fn, err := tools.NewFunc("getWeather", "Get the current weather for a city",
		func(ctx context.Context, in WeatherInput) (any, error) {
			if in.City == "" {
				return nil, errors.New("city is required")
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(latency):
			}

			h := fnv.New32a()
			h.Write([]byte(in.City))
			sum := h.Sum32()

			return WeatherReport{
				City:        in.City,
				Temperature: 5 + int(sum%25),
				Unit:        "C",
				Conditions:  conditions[int(sum/25)%len(conditions)],
				Humidity:    30 + int(sum/7%60),
			}, nil
		})
	if err != nil {
		return nil, err
	}

	return fn.WithLoading(func(in WeatherInput) string {
		return fmt.Sprintf("Getting weather for %s...", in.City)
	}), nil
}

// MathInput is the argument object of add and multiply.
type MathInput struct {
	A float64 `json:"a" jsonschema:"the first number"`
	B float64 `json:"b" jsonschema:"the second number"`
}

// MathResult is the result of add and multiply.
type MathResult struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    float64 `json:"result"`
}

func (m MathResult) Summary() string {
	op := "+"
	if m.Operation == "multiply" {
		op = "×"
	}
	return fmt.Sprintf("%s %s %s = %s", num(m.A), op, num(m.B), num(m.Result))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Add returns the add tool.
func Add() (tools.Tool, error) {
	fn, err := tools.NewFunc("add", "Add two numbers together",
		func(_ context.Context, in MathInput) (any, error) {
			return MathResult{Operation: "add", A: in.A, B: in.B, Result: in.A + in.B}, nil
		})
	if err != nil {
		return nil, err
	}
	return fn.WithLoading(func(in MathInput) string {
		return fmt.Sprintf("Adding %s and %s...", num(in.A), num(in.B))
	}), nil
}

// Multiply returns the multiply tool.
func Multiply() (tools.Tool, error) {
	fn, err := tools.NewFunc("multiply", "Multiply two numbers together",
		func(_ context.Context, in MathInput) (any, error) {
			return MathResult{Operation: "multiply", A: in.A, B: in.B, Result: in.A * in.B}, nil
		})
	if err != nil {
		return nil, err
	}
	return fn.WithLoading(func(in MathInput) string {
		return fmt.Sprintf("Multiplying %s by %s...", num(in.A), num(in.B))
	}), nil
}

// Registry builds the default registry.
func Registry(weatherLatency time.Duration) (*tools.Registry, error) {
	weather, err := Weather(weatherLatency)
	if err != nil {
		return nil, err
	}
	add, err := Add()
	if err != nil {
		return nil, err
	}
	multiply, err := Multiply()
	if err != nil {
		return nil, err
	}
	return tools.NewRegistry(weather, add, multiply)
}

// SystemPrompt is the default system prompt for the built-in tools.
const SystemPrompt = "You are a helpful assistant that can perform mathematical calculations " +
	"and look up the weather. You have access to 'add' and 'multiply' tools for arithmetic " +
	"operations and a 'getWeather' tool for current conditions in a city. When users ask " +
	"for calculations or the weather, use these tools to provide accurate results."
