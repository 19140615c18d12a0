/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package verify proves the cluster can pull from the local registry by
// running a pod whose image resolves through it.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/radius-project/spoke/pkg/defaults"
	apperrors "github.com/radius-project/spoke/pkg/errors"
	"github.com/radius-project/spoke/pkg/poll"
)

// Result describes a completed connectivity check.
type Result struct {
	Pod      string        `json:"pod" yaml:"pod"`
	Image    string        `json:"image" yaml:"image"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Verifier runs connectivity check pods.
type Verifier struct {
	client kubernetes.Interface

	pollInterval time.Duration
	pollAttempts int

	cleanup sync.WaitGroup
	now     func() time.Time
}

// NewVerifier creates a Verifier against the given cluster.
func NewVerifier(client kubernetes.Interface) *Verifier {
	return &Verifier{
		client:       client,
		pollInterval: defaults.VerifyPollInterval,
		pollAttempts: defaults.VerifyPollAttempts,
		now:          time.Now,
	}
}

// Run creates a uniquely named pod pulling through registryAddr and waits for
// it to complete. A succeeded pod is deleted in the background; a failed pod
// is left in place for inspection.
func (v *Verifier) Run(ctx context.Context, registryAddr string) (*Result, error) {
	name := fmt.Sprintf("%s-%s", defaults.VerifyPodPrefix, uuid.NewString()[:8])
	image := registryAddr + "/" + defaults.VerifyImage
	start := v.now()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: defaults.VerifyNamespace,
			Labels:    map[string]string{"app.kubernetes.io/name": defaults.VerifyPodPrefix},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{{
				Name:    "verify",
				Image:   image,
				Command: []string{"echo", "registry connectivity verified"},
			}},
		},
	}

	pods := v.client.CoreV1().Pods(defaults.VerifyNamespace)
	createCtx, cancel := context.WithTimeout(ctx, defaults.K8sOpTimeout)
	defer cancel()
	if _, err := pods.Create(createCtx, pod, metav1.CreateOptions{}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConnectivityFailed,
			"failed to create connectivity check pod", err)
	}
	slog.Info("connectivity check started", "pod", name, "image", image)

	err := poll.Until(ctx, v.pollInterval, v.pollAttempts, func(ctx context.Context) (bool, error) {
		current, err := pods.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			slog.Debug("failed to get connectivity pod", "pod", name, "error", err)
			return false, nil
		}
		switch current.Status.Phase {
		case corev1.PodSucceeded:
			return true, nil
		case corev1.PodFailed:
			return false, apperrors.NewWithContext(apperrors.ErrCodeConnectivityFailed,
				fmt.Sprintf("connectivity check pod %s failed; pod left in place for inspection", name),
				map[string]any{"namespace": defaults.VerifyNamespace, "image": image})
		default:
			return false, nil
		}
	})
	if err != nil {
		if errors.Is(err, poll.ErrExhausted) {
			return nil, apperrors.Wrapf(apperrors.ErrCodeConnectivityTimeout, err,
				"connectivity check pod %s did not complete; pod left in place for inspection", name)
		}
		return nil, err
	}

	v.cleanup.Add(1)
	go func() {
		defer v.cleanup.Done()
		delCtx, cancel := context.WithTimeout(context.Background(), defaults.VerifyCleanupTimeout)
		defer cancel()
		if err := pods.Delete(delCtx, name, metav1.DeleteOptions{}); err != nil {
			slog.Warn("failed to delete connectivity pod", "pod", name, "error", err)
		}
	}()

	result := &Result{Pod: name, Image: image, Duration: v.now().Sub(start)}
	slog.Info("connectivity verified", "pod", name, "duration", result.Duration)
	return result, nil
}

// Close waits for background pod cleanup to finish.
func (v *Verifier) Close() error {
	v.cleanup.Wait()
	return nil
}
