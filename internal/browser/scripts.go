package browser

import "fmt"

// interactiveEnumerationJS collects the page's interactive elements in
// document order and resolves an element's 1-based position in that list.
// The survey and describe scripts share it so the index a survey reports is
// the same index a later description resolves for the same element.
const interactiveEnumerationJS = `
	const collectInteractive = () => {
		const tags = ['a', 'button', 'input', 'select', 'textarea'];
		const list = [];
		for (const el of document.querySelectorAll('*')) {
			const tag = el.tagName.toLowerCase();
			const role = el.getAttribute('role');
			const interactive =
				tags.includes(tag) ||
				role === 'button' ||
				role === 'link' ||
				role === 'tab' ||
				role === 'menuitem' ||
				el.onclick !== null ||
				window.getComputedStyle(el).cursor === 'pointer';
			if (interactive) list.push(el);
		}
		return list;
	};
	const indexOfElement = (el) => {
		const at = collectInteractive().indexOf(el);
		return at < 0 ? null : at + 1;
	};
`

// describeNodeJS serializes one element into the raw-node shape parseRawNode
// expects. Both describe entry points go through it so they agree field by
// field.
const describeNodeJS = `
	const absoluteXPath = (el) => {
		const parts = [];
		let node = el;
		while (node && node.nodeType === Node.ELEMENT_NODE) {
			let position = 1;
			let sibling = node.previousElementSibling;
			while (sibling) {
				if (sibling.tagName === node.tagName) position++;
				sibling = sibling.previousElementSibling;
			}
			parts.unshift(node.tagName.toLowerCase() + '[' + position + ']');
			node = node.parentElement;
		}
		return '/' + parts.join('/');
	};
	const describeNode = (el) => {
		if (!el) return null;

		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);

		const attributes = {};
		for (const attr of el.attributes) {
			attributes[attr.name] = attr.value;
		}

		const visible = (
			rect.width > 0 &&
			rect.height > 0 &&
			style.display !== 'none' &&
			style.visibility !== 'hidden' &&
			parseFloat(style.opacity) > 0
		);

		const scrollable = (
			el.scrollHeight > el.clientHeight &&
			['auto', 'scroll'].includes(style.overflowY)
		);

		const clickable = (
			['a', 'button', 'input', 'select'].includes(el.tagName.toLowerCase()) ||
			el.onclick !== null ||
			style.cursor === 'pointer'
		);

		const axProps = {};
		for (const attr of el.attributes) {
			if (attr.name.startsWith('aria-') &&
				!['aria-label', 'aria-description', 'aria-hidden'].includes(attr.name)) {
				axProps[attr.name.substring(5)] = attr.value;
			}
		}

		return {
			elementIndex: indexOfElement(el),
			nodeName: el.tagName,
			attributes: attributes,
			isVisible: visible,
			isScrollable: scrollable,
			absolutePosition: {
				x: rect.left + window.scrollX,
				y: rect.top + window.scrollY,
				width: rect.width,
				height: rect.height
			},
			snapshot: {
				isClickable: clickable,
				cursorStyle: style.cursor
			},
			ax: {
				role: el.getAttribute('role') || '',
				name: el.getAttribute('aria-label') || '',
				description: el.getAttribute('aria-description') || '',
				ignored: el.getAttribute('aria-hidden') === 'true',
				properties: axProps
			},
			text: (el.innerText || el.textContent || el.value || '').trim(),
			xpath: absoluteXPath(el)
		};
	};
`

func describeElementScript(selector string) string {
	return fmt.Sprintf(`(() => {
		try {
			%s
			%s
			return describeNode(document.querySelector('%s'));
		} catch(e) {
			return null;
		}
	})()`, interactiveEnumerationJS, describeNodeJS, escapeSelector(selector))
}

func describeElementAtScript(x, y float64) string {
	return fmt.Sprintf(`(() => {
		try {
			%s
			%s
			return describeNode(document.elementFromPoint(%f, %f));
		} catch(e) {
			return null;
		}
	})()`, interactiveEnumerationJS, describeNodeJS, x, y)
}

func getElementsScript() string {
	return fmt.Sprintf(`(() => {
		try {
			%s
			const result = [];
			const maxElements = 120;

			const generateSelector = (el) => {
				const tag = el.tagName.toLowerCase();

				const qaAttrs = ['data-testid', 'data-test-id', 'data-test', 'data-qa', 'data-cy'];
				for (const attr of qaAttrs) {
					const val = el.getAttribute(attr);
					if (val) {
						return tag + '[' + attr + '="' + val + '"]';
					}
				}

				if (el.id && /^[a-zA-Z]/.test(el.id) && !el.id.includes(' ')) {
					return '#' + el.id;
				}

				if (el.name && ['input', 'select', 'textarea', 'button'].includes(tag)) {
					return tag + '[name="' + el.name + '"]';
				}

				const ariaLabel = el.getAttribute('aria-label');
				if (ariaLabel && ariaLabel.length < 80) {
					return '[aria-label="' + ariaLabel + '"]';
				}

				if (el.type && tag === 'input') {
					if (el.placeholder) {
						return 'input[type="' + el.type + '"][placeholder="' + el.placeholder + '"]';
					}
					return 'input[type="' + el.type + '"]';
				}

				if (el.className && typeof el.className === 'string') {
					const classes = el.className.split(' ')
						.filter(c => c && !c.match(/^[0-9]/) && c.length < 40 && !c.match(/^[a-f0-9]{8,}$/))
						.slice(0, 2);
					if (classes.length > 0) {
						return '.' + classes.join('.');
					}
				}

				let path = [];
				let current = el;
				let depth = 0;
				while (current && current.tagName && depth < 3) {
					const t = current.tagName.toLowerCase();
					if (current.id) {
						path.unshift('#' + current.id);
						break;
					}
					const position = Array.from(current.parentNode?.children || []).indexOf(current);
					if (position >= 0) {
						path.unshift(t + ':nth-child(' + (position + 1) + ')');
					}
					current = current.parentElement;
					depth++;
				}
				return path.length > 0 ? path.join(' > ') : tag;
			};

			collectInteractive().forEach((el, at) => {
				if (result.length >= maxElements) return;

				const rect = el.getBoundingClientRect();
				const style = window.getComputedStyle(el);

				const isVisible = (
					rect.width > 0 &&
					rect.height > 0 &&
					style.display !== 'none' &&
					style.visibility !== 'hidden' &&
					style.opacity !== '0' &&
					rect.top < window.innerHeight + 500 &&
					rect.bottom > -500
				);

				if (!isVisible) return;

				const tag = el.tagName.toLowerCase();
				const ariaLabel = el.getAttribute('aria-label');
				const role = el.getAttribute('role');
				const testId = el.getAttribute('data-testid') || el.getAttribute('data-test-id');

				let txt = '';
				if (el.value) {
					txt = el.value;
				} else if (el.innerText && el.innerText.trim()) {
					txt = el.innerText;
				} else if (el.textContent && el.textContent.trim()) {
					txt = el.textContent;
				} else if (ariaLabel) {
					txt = ariaLabel;
				}

				txt = txt.trim();
				if (txt.length > 200) {
					txt = txt.substring(0, 200) + '...';
				}

				const attrs = {};
				if (el.id) attrs.id = el.id;
				if (el.type) attrs.type = el.type;
				if (el.placeholder) attrs.placeholder = el.placeholder.substring(0, 50);
				if (el.name) attrs.name = el.name;
				if (ariaLabel) attrs['aria-label'] = ariaLabel.substring(0, 100);
				if (el.href) attrs.href = el.href.substring(0, 100);
				if (role) attrs.role = role;
				if (testId) attrs['data-testid'] = testId;

				const clickable = (
					['a', 'button', 'input', 'select'].includes(tag) ||
					el.onclick !== null ||
					role === 'button' ||
					role === 'link' ||
					role === 'tab' ||
					role === 'menuitem' ||
					style.cursor === 'pointer'
				);

				result.push({
					index: at + 1,
					tag: tag,
					text: txt,
					selector: generateSelector(el),
					attributes: attrs,
					visible: true,
					clickable: clickable,
					x: Math.round(rect.left + rect.width / 2),
					y: Math.round(rect.top + rect.height / 2),
					width: Math.round(rect.width),
					height: Math.round(rect.height)
				});
			});

			return result;
		} catch(e) {
			console.error('Error in GetElements:', e);
			return [];
		}
	})()`, interactiveEnumerationJS)
}
