/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package cluster

import (
	"context"
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/radius-project/spoke/pkg/defaults"
	apperrors "github.com/radius-project/spoke/pkg/errors"
)

// localRegistryHosting is the discovery document published to kube-public so
// in-cluster tooling can find the registry.
type localRegistryHosting struct {
	Host                   string `json:"host"`
	HostFromClusterNetwork string `json:"hostFromClusterNetwork"`
	Help                   string `json:"help"`
}

// publishRegistryHosting creates or updates the local-registry-hosting
// ConfigMap in kube-public.
func (p *Provisioner) publishRegistryHosting(ctx context.Context, kubeContext, registryHost string, registryPort int) error {
	client, err := p.clients(kubeContext)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTrustConfig,
			"failed to build cluster client", err)
	}

	doc := localRegistryHosting{
		Host:                   fmt.Sprintf("localhost:%d", registryPort),
		HostFromClusterNetwork: fmt.Sprintf("%s:%d", registryHost, registryPort),
		Help:                   defaults.RegistryHostingHelpURL,
	}
	body, err := yaml.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeTrustConfig,
			"failed to render registry hosting document", err)
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      defaults.RegistryHostingConfigMap,
			Namespace: defaults.RegistryHostingNamespace,
		},
		Data: map[string]string{"localRegistryHosting.v1": string(body)},
	}

	cms := client.CoreV1().ConfigMaps(defaults.RegistryHostingNamespace)
	opCtx, cancel := context.WithTimeout(ctx, defaults.K8sOpTimeout)
	defer cancel()

	if _, err := cms.Create(opCtx, cm, metav1.CreateOptions{}); err != nil {
		if !k8serrors.IsAlreadyExists(err) {
			return apperrors.Wrap(apperrors.ErrCodeTrustConfig,
				"failed to create registry hosting ConfigMap", err)
		}
		if _, err := cms.Update(opCtx, cm, metav1.UpdateOptions{}); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeTrustConfig,
				"failed to update registry hosting ConfigMap", err)
		}
	}

	slog.Debug("registry hosting ConfigMap published",
		"namespace", defaults.RegistryHostingNamespace, "name", defaults.RegistryHostingConfigMap)
	return nil
}
