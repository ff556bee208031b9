// Package viewer generates the static browser page the server serves.
// The page embeds the dataset JSON at generation time; its filter JS
// mirrors the operator semantics of internal/dataset so offline
// re-renders and server-side filtering agree.
package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"dataset-builder/internal/dataset"
)

// PageName is the filename of the generated viewer page inside the
// output directory.
const PageName = "dataset_viewer.html"

type pageData struct {
	DatasetJSON template.JS
}

// Generate renders the viewer page for the dataset into dir/PageName.
func Generate(dir string, d *dataset.Dataset) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dataset for page: %w", err)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{DatasetJSON: template.JS(raw)}); err != nil {
		return fmt.Errorf("render viewer page: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, PageName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write viewer page: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Dataset Viewer</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; margin: 0; padding: 20px; color: #333; }
    .header { background-color: #f8f9fa; padding: 15px; margin-bottom: 20px; border-radius: 5px; }
    .header-buttons { display: flex; gap: 10px; margin-top: 10px; }
    .container { display: flex; gap: 20px; }
    .sidebar { width: 300px; background-color: #f8f9fa; padding: 15px; border-radius: 5px; height: fit-content; position: sticky; top: 20px; }
    .item-container { display: flex; flex-wrap: wrap; gap: 20px; flex: 1; }
    .item-card { border: 1px solid #ddd; border-radius: 8px; padding: 15px; width: 300px; background-color: white; }
    .item-image { width: 100%; height: 200px; object-fit: contain; background-color: #f8f9fa; }
    .item-id { font-weight: bold; margin-bottom: 5px; }
    label { display: block; margin-top: 8px; font-weight: bold; font-size: 0.9em; }
    input[type="text"], textarea, select { width: calc(100% - 16px); padding: 6px; margin-top: 4px; border: 1px solid #ddd; border-radius: 4px; }
    input[readonly] { background-color: #e9ecef; }
    textarea { height: 60px; resize: vertical; }
    .btn { padding: 8px 14px; border: none; border-radius: 4px; cursor: pointer; background-color: #007bff; color: white; }
    .btn-remove { background-color: #f44336; }
    .btn-secondary { background-color: #6c757d; }
    .filter-row { display: flex; gap: 4px; margin-bottom: 8px; }
    #status-message { display: none; padding: 10px; margin-top: 10px; border-radius: 4px; }
    .status-info { background-color: #cce5ff; color: #004085; }
    .status-error { background-color: #f8d7da; color: #721c24; }
    .last-updated { font-size: 0.9em; color: #666; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Dataset Viewer</h1>
    <div class="header-buttons">
      <button class="btn" onclick="saveAllChanges()">Save Changes</button>
      <button class="btn btn-secondary" onclick="refreshDataset()">Refresh</button>
      <button class="btn btn-secondary" onclick="restartServer()">Restart Server</button>
    </div>
    <div id="status-message"></div>
    <div class="last-updated">Last updated: <span id="lastUpdated"></span></div>
    <div>
      <input type="text" id="searchInput" placeholder="Search by ID, attribute or notes...">
      <button class="btn" onclick="applyView()">Search</button>
      <button class="btn btn-secondary" onclick="clearView()">Clear</button>
    </div>
    <div>Showing <span id="itemCount">0</span> items</div>
  </div>

  <div class="container">
    <div class="sidebar">
      <div><strong>Shared Attributes</strong></div>
      <div id="sharedAttributes"></div>
      <button class="btn" onclick="addSharedAttribute()">Add Attribute</button>
      <div style="margin-top:15px"><strong>Filters</strong></div>
      <div id="filterRows"></div>
      <button class="btn" onclick="addFilterRow()">Add Filter</button>
    </div>
    <div id="item-container" class="item-container"></div>
  </div>

  <script>
    const dataset = {{.DatasetJSON}};
    const OPERATORS = ["equals", "notEquals", "contains", "startsWith", "endsWith"];
    let filteredItems = dataset.items.slice();

    document.addEventListener('DOMContentLoaded', function() {
      renderSharedAttributes();
      renderItems(dataset.items);
      document.getElementById('lastUpdated').textContent = dataset.last_updated || 'Never';
      updateItemCount();
    });

    function updateItemCount() {
      document.getElementById('itemCount').textContent = filteredItems.length;
    }

    function showStatus(message, type) {
      const el = document.getElementById('status-message');
      el.textContent = message;
      el.className = type === 'error' ? 'status-error' : 'status-info';
      el.style.display = 'block';
    }

    function renderSharedAttributes() {
      const container = document.getElementById('sharedAttributes');
      container.innerHTML = '';
      dataset.attributes.forEach((attr, index) => {
        const row = document.createElement('div');
        if (attr.name === 'ID') {
          row.innerHTML = '<label>ID (readonly)</label>';
        } else {
          row.innerHTML =
            '<label>Name:</label><input type="text" class="attr-name" value="' + (attr.name || '') + '">' +
            '<label>Description:</label><input type="text" class="attr-description" value="' + (attr.description || '') + '">' +
            '<button class="btn btn-remove" onclick="removeSharedAttribute(' + index + ')">Remove</button>';
        }
        container.appendChild(row);
      });
    }

    function addSharedAttribute() {
      dataset.attributes.splice(1, 0, { name: '', description: '' });
      renderSharedAttributes();
    }

    function removeSharedAttribute(index) {
      if (dataset.attributes[index].name === 'ID') {
        alert('The ID attribute cannot be removed.');
        return;
      }
      const name = dataset.attributes[index].name;
      dataset.attributes.splice(index, 1);
      if (name) {
        dataset.items.forEach(item => {
          if (item.attribute_values) delete item.attribute_values[name];
        });
      }
      renderSharedAttributes();
      renderItems(filteredItems);
    }

    function renderItems(items) {
      const container = document.getElementById('item-container');
      container.innerHTML = '';
      items.forEach(item => {
        if (!item.attribute_values) item.attribute_values = {};
        item.attribute_values['ID'] = item.id;
        const card = document.createElement('div');
        card.className = 'item-card';
        card.dataset.id = item.id;

        let attrsHtml = '';
        dataset.attributes.forEach(attr => {
          if (!attr.name) return;
          const value = item.attribute_values[attr.name] || '';
          const ro = attr.readonly ? ' readonly' : '';
          attrsHtml += '<div class="attribute-row" data-name="' + attr.name + '">' +
            '<label>' + attr.name + ':</label>' +
            '<input type="text" class="attr-value" value="' + value + '"' + ro + '></div>';
        });

        card.innerHTML =
          '<div class="item-id">' + item.id + '</div>' +
          '<img src="' + item.image + '" alt="' + item.id + '" class="item-image">' +
          attrsHtml +
          '<label>Notes:</label><textarea class="item-notes">' + (item.notes || '') + '</textarea>' +
          '<button class="btn btn-remove" onclick="removeItem(\'' + item.id + '\')">Remove Item</button>';
        container.appendChild(card);
      });
      if (items.length === 0) {
        container.innerHTML = '<p>No items found.</p>';
      }
    }

    function collectEdits() {
      const idAttribute = dataset.attributes.find(a => a.name === 'ID');
      const attrs = [idAttribute];
      document.querySelectorAll('#sharedAttributes .attr-name').forEach((nameInput, i) => {
        const name = nameInput.value.trim();
        const descInput = document.querySelectorAll('#sharedAttributes .attr-description')[i];
        if (name && name !== 'ID') {
          attrs.push({ name: name, description: descInput ? descInput.value.trim() : '' });
        }
      });
      dataset.attributes = attrs;

      document.querySelectorAll('.item-card').forEach(card => {
        const item = dataset.items.find(i => i.id === card.dataset.id);
        if (!item) return;
        if (!item.attribute_values) item.attribute_values = {};
        item.attribute_values['ID'] = item.id;
        card.querySelectorAll('.attribute-row').forEach(row => {
          if (row.dataset.name !== 'ID') {
            item.attribute_values[row.dataset.name] = row.querySelector('.attr-value').value.trim();
          }
        });
        item.notes = card.querySelector('.item-notes').value.trim();
      });
      dataset.last_updated = new Date().toISOString();
    }

    function saveAllChanges() {
      collectEdits();
      fetch('/save', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(dataset)
      })
      .then(r => { if (!r.ok) throw new Error('server returned ' + r.status); return r.json(); })
      .then(() => showStatus('Changes saved.', 'info'))
      .catch(err => showStatus('Error saving changes: ' + err.message, 'error'));
    }

    function removeItem(id) {
      if (!confirm('Remove item ' + id + ' and its image?')) return;
      fetch('/remove', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ item_id: id })
      })
      .then(r => { if (!r.ok) throw new Error('server returned ' + r.status); return r.json(); })
      .then(data => {
        dataset.items = data.items;
        dataset.last_updated = data.last_updated;
        applyView();
        showStatus('Item removed.', 'info');
      })
      .catch(err => showStatus('Error removing item: ' + err.message, 'error'));
    }

    function refreshDataset() {
      collectEdits();
      fetch('/refresh', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(dataset)
      })
      .then(r => { if (!r.ok) throw new Error('server returned ' + r.status); return r.json(); })
      .then(data => {
        dataset.items = data.items;
        dataset.last_updated = data.last_updated;
        applyView();
        showStatus(data.message, 'info');
      })
      .catch(err => showStatus('Error refreshing: ' + err.message, 'error'));
    }

    async function restartServer() {
      if (!confirm('Save all changes and restart the server?')) return;
      collectEdits();
      showStatus('Restarting server...', 'info');
      try {
        await fetch('/restart', {
          method: 'POST',
          headers: { 'Content-Type': 'application/json' },
          body: JSON.stringify(dataset)
        });
      } catch (err) {
        // The listener may already be gone; keep polling.
      }
      pollUntilAlive();
    }

    function pollUntilAlive() {
      const timer = setInterval(async () => {
        try {
          const r = await fetch('/?ping=1', { cache: 'no-store' });
          if (r.ok) {
            clearInterval(timer);
            location.reload();
          }
        } catch (err) {
          // Not back yet.
        }
      }, 1000);
    }

    function addFilterRow() {
      const row = document.createElement('div');
      row.className = 'filter-row';
      let options = '';
      OPERATORS.forEach(op => { options += '<option value="' + op + '">' + op + '</option>'; });
      row.innerHTML =
        '<input type="text" class="filter-attr" placeholder="Attribute">' +
        '<select class="filter-op">' + options + '</select>' +
        '<input type="text" class="filter-value" placeholder="Value">';
      document.getElementById('filterRows').appendChild(row);
    }

    function activeFilters() {
      const filters = [];
      document.querySelectorAll('#filterRows .filter-row').forEach(row => {
        const attr = row.querySelector('.filter-attr').value.trim();
        if (!attr) return;
        filters.push({
          attribute: attr,
          operator: row.querySelector('.filter-op').value,
          value: row.querySelector('.filter-value').value
        });
      });
      return filters;
    }

    // Mirrors the server's filter engine: case-insensitive, absent
    // values compare as empty strings, filters AND together.
    function matchesFilter(item, f) {
      const value = ((item.attribute_values || {})[f.attribute] || '').toLowerCase();
      const want = (f.value || '').toLowerCase();
      switch (f.operator) {
        case 'equals': return value === want;
        case 'notEquals': return value !== want;
        case 'contains': return value.includes(want);
        case 'startsWith': return value.startsWith(want);
        case 'endsWith': return value.endsWith(want);
      }
      return false;
    }

    function matchesSearch(item, term) {
      if (item.id.toLowerCase().includes(term)) return true;
      for (const [key, value] of Object.entries(item.attribute_values || {})) {
        if (key.toLowerCase().includes(term)) return true;
        if (value && value.toString().toLowerCase().includes(term)) return true;
      }
      return !!(item.notes && item.notes.toLowerCase().includes(term));
    }

    function applyView() {
      const term = document.getElementById('searchInput').value.toLowerCase().trim();
      const filters = activeFilters();
      filteredItems = dataset.items.filter(item => {
        if (term && !matchesSearch(item, term)) return false;
        return filters.every(f => matchesFilter(item, f));
      });
      renderItems(filteredItems);
      updateItemCount();
    }

    function clearView() {
      document.getElementById('searchInput').value = '';
      document.getElementById('filterRows').innerHTML = '';
      filteredItems = dataset.items.slice();
      renderItems(filteredItems);
      updateItemCount();
    }
  </script>
</body>
</html>
`))
